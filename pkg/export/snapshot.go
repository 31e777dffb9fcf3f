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

package export

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"

	"github.com/basenana/graphdump/config"
	"github.com/basenana/graphdump/pkg/storage"
)

const (
	TodoSnapshotName    = "todo-output"
	OneNoteSnapshotName = "onenote-output"
)

// SnapshotKey is the storage key of a snapshot, compressed snapshots get a .lz4 suffix.
func SnapshotKey(name, compress string) string {
	if compress == config.LZ4Compress {
		return name + ".json.lz4"
	}
	return name + ".json"
}

func EncodeSnapshot(w io.Writer, snapshot any, compress string) error {
	if compress != config.LZ4Compress {
		return encodeJSON(w, snapshot)
	}
	zw := lz4.NewWriter(w)
	if err := encodeJSON(zw, snapshot); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

func DecodeSnapshot(r io.Reader, snapshot any, compress string) error {
	if compress == config.LZ4Compress {
		r = lz4.NewReader(r)
	}
	if err := json.NewDecoder(r).Decode(snapshot); err != nil {
		return errors.Wrap(err, "decode snapshot failed")
	}
	return nil
}

// LoadSnapshot reads back a snapshot written by an earlier run.
func LoadSnapshot(ctx context.Context, store storage.Storage, name, compress string, snapshot any) error {
	rc, err := store.Get(ctx, SnapshotKey(name, compress))
	if err != nil {
		return err
	}
	defer rc.Close()
	return DecodeSnapshot(rc, snapshot, compress)
}

func writeSnapshot(ctx context.Context, store storage.Storage, name, compress string, snapshot any) (string, error) {
	buf := &bytes.Buffer{}
	if err := EncodeSnapshot(buf, snapshot, compress); err != nil {
		return "", err
	}
	key := SnapshotKey(name, compress)
	if err := store.Put(ctx, key, buf); err != nil {
		return "", errors.Wrapf(err, "write snapshot %s failed", key)
	}
	return key, nil
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encode snapshot failed")
	}
	return nil
}
