/*
 Copyright 2023 NanaFS Authors.

 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/basenana/graphdump/config"
	"github.com/basenana/graphdump/pkg/types"
)

type Info struct {
	Key  string
	Size int64
}

// Storage is a flat key/object store, keys are slash separated relative paths
// such as "content/<page id>.html".
type Storage interface {
	ID() string
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, in io.Reader) error
	Delete(ctx context.Context, key string) error
	Head(ctx context.Context, key string) (Info, error)
}

func NewStorage(cfg config.Storage) (Storage, error) {
	var (
		s   Storage
		err error
	)
	switch cfg.Type {
	case LocalStorage:
		s, err = newLocalStorage(cfg.ID, cfg.LocalDir)
	case MemoryStorage:
		s = newMemoryStorage(cfg.ID)
	case S3Storage:
		s, err = newS3Storage(cfg.ID, cfg.S3)
	case MinioStorage:
		s, err = newMinioStorage(cfg.ID, cfg.MinIO)
	case OSSStorage:
		s, err = newOSSStorage(cfg.ID, cfg.OSS)
	case WebdavStorage:
		s, err = newWebdavStorage(cfg.ID, cfg.Webdav)
	default:
		return nil, fmt.Errorf("%w: unknow storage type: %s", types.ErrInvalidConfig, cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	return instrumentalStorage{s: s}, nil
}

// ReadAll fetches a whole object, objects written by this tool are small snapshots and pages.
func ReadAll(ctx context.Context, s Storage, key string) ([]byte, error) {
	r, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func cleanKey(key string) (string, error) {
	key = path.Clean("/" + strings.TrimSpace(key))
	key = strings.TrimPrefix(key, "/")
	if key == "" || key == "." {
		return "", fmt.Errorf("object key is empty")
	}
	return key, nil
}

func objectName(prefix, key string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return key, nil
	}
	return prefix + "/" + key, nil
}

func contentTypeOf(key string) string {
	switch path.Ext(key) {
	case ".json":
		return "application/json"
	case ".lz4":
		return "application/x-lz4"
	case ".md":
		return "text/markdown; charset=utf-8"
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
