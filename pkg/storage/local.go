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
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/basenana/graphdump/config"
	"github.com/basenana/graphdump/pkg/types"
	"github.com/basenana/graphdump/utils"
	"github.com/basenana/graphdump/utils/logger"
)

const (
	LocalStorage  = config.LocalStorage
	MemoryStorage = config.MemoryStorage
)

type local struct {
	sid    string
	dir    string
	logger *zap.SugaredLogger
}

var _ Storage = &local{}

func (l *local) ID() string {
	return l.sid
}

func (l *local) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	defer utils.TraceRegion(ctx, "local.get")()
	p, err := l.localPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.ErrNotFound
		}
		l.logger.Errorw("open file failed", "path", p, "err", err)
		return nil, err
	}
	return f, nil
}

func (l *local) Put(ctx context.Context, key string, in io.Reader) error {
	defer utils.TraceRegion(ctx, "local.put")()
	p, err := l.localPath(key)
	if err != nil {
		return err
	}
	if err = utils.WriteFileAtomic(p, in); err != nil {
		l.logger.Errorw("write file failed", "path", p, "err", err)
		return err
	}
	return nil
}

func (l *local) Delete(ctx context.Context, key string) error {
	defer utils.TraceRegion(ctx, "local.delete")()
	p, err := l.localPath(key)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if err != nil && !os.IsNotExist(err) {
		l.logger.Errorw("delete file failed", "path", p, "err", err)
		return err
	}
	return nil
}

func (l *local) Head(ctx context.Context, key string) (Info, error) {
	defer utils.TraceRegion(ctx, "local.head")()
	p, err := l.localPath(key)
	if err != nil {
		return Info{}, err
	}
	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, types.ErrNotFound
		}
		return Info{}, err
	}
	if info.IsDir() {
		return Info{}, types.ErrNotFound
	}
	return Info{Key: key, Size: info.Size()}, nil
}

func (l *local) localPath(key string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.dir, filepath.FromSlash(key)), nil
}

func newLocalStorage(sid, dir string) (Storage, error) {
	if err := utils.Mkdir(dir); err != nil {
		return nil, fmt.Errorf("init local data dir failed: %s", err)
	}
	return &local{
		sid:    sid,
		dir:    dir,
		logger: logger.NewLogger("localStorage"),
	}, nil
}
