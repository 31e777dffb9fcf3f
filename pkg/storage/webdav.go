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
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"path"
	"runtime/trace"
	"time"

	"github.com/studio-b12/gowebdav"
	"go.uber.org/zap"

	"github.com/basenana/graphdump/config"
	"github.com/basenana/graphdump/pkg/types"
	"github.com/basenana/graphdump/utils/logger"
)

const (
	WebdavStorage = config.WebdavStorage
)

type webdavStorage struct {
	sid    string
	cfg    *config.WebdavStorageConfig
	cli    *gowebdav.Client
	logger *zap.SugaredLogger
}

var _ Storage = &webdavStorage{}

func (w *webdavStorage) ID() string {
	return w.sid
}

func (w *webdavStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	defer trace.StartRegion(ctx, "storage.webdav.Get").End()
	p, err := w.objectPath(key)
	if err != nil {
		return nil, err
	}
	fileReader, err := w.cli.ReadStream(p)
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, types.ErrNotFound
		}
		w.logger.Errorw("get file from server failed", "path", p, "err", err)
		return nil, err
	}
	return fileReader, nil
}

func (w *webdavStorage) Put(ctx context.Context, key string, dataReader io.Reader) error {
	defer trace.StartRegion(ctx, "storage.webdav.Put").End()
	p, err := w.objectPath(key)
	if err != nil {
		return err
	}

	if err = w.cli.MkdirAll(path.Dir(p), 0755); err != nil {
		w.logger.Errorw("put file to server failed: mkdir error", "path", path.Dir(p), "err", err)
		return err
	}
	if err = w.cli.WriteStream(p, dataReader, 0644); err != nil {
		w.logger.Errorw("put file to server failed", "path", p, "err", err)
		return err
	}
	return nil
}

func (w *webdavStorage) Delete(ctx context.Context, key string) error {
	defer trace.StartRegion(ctx, "storage.webdav.Delete").End()
	p, err := w.objectPath(key)
	if err != nil {
		return err
	}
	if err = w.cli.Remove(p); err != nil && !gowebdav.IsErrNotFound(err) {
		w.logger.Errorw("delete file failed", "path", p, "err", err)
		return err
	}
	return nil
}

func (w *webdavStorage) Head(ctx context.Context, key string) (Info, error) {
	defer trace.StartRegion(ctx, "storage.webdav.Head").End()
	p, err := w.objectPath(key)
	if err != nil {
		return Info{}, err
	}
	info, err := w.cli.Stat(p)
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return Info{}, types.ErrNotFound
		}
		w.logger.Errorw("stat file from server failed", "path", p, "err", err)
		return Info{}, err
	}
	return Info{Key: key, Size: info.Size()}, nil
}

func (w *webdavStorage) objectPath(key string) (string, error) {
	name, err := objectName(w.cfg.Prefix, key)
	if err != nil {
		return "", err
	}
	return "/" + name, nil
}

func newWebdavStorage(storageID string, cfg *config.WebdavStorageConfig) (Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("webdav is nil")
	}
	if storageID == "" {
		return nil, fmt.Errorf("storage id is empty")
	}
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("webdav config server_url is empty")
	}
	if cfg.Username == "" {
		return nil, fmt.Errorf("webdav config user is empty")
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("webdav config password is empty")
	}

	t := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   60 * time.Second,
		ExpectContinueTimeout: 10 * time.Second,
	}
	if cfg.Insecure {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	cli := gowebdav.NewClient(cfg.ServerURL, cfg.Username, cfg.Password)
	cli.SetTransport(t)

	return &webdavStorage{
		sid:    storageID,
		cfg:    cfg,
		cli:    cli,
		logger: logger.NewLogger("webdav"),
	}, nil
}
