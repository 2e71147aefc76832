// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/docdex/storage"
)

const (
	objectPrefix = "obj:"
	metaPrefix   = "objmeta:"
)

// Store is a BadgerDB-backed object store.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ storage.ObjectStore = (*Store)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenStore opens a BadgerDB database at the specified path.
// Creates the directory if it doesn't exist.
func OpenStore(filePath string, inMemory bool) (*Store, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	logger := slog.Default().With("component", "badger-store")
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the BadgerDB database.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsClosed returns true if the database is closed.
func (s *Store) IsClosed() bool {
	return s.db.IsClosed()
}

// PutObject stores data under container/name, overwriting any previous
// object with the same name. Returns the object URL.
func (s *Store) PutObject(ctx context.Context, container, name string, data []byte, accessLabels ...string) (string, error) {
	if err := validateKey(container, name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info := storage.ObjectInfo{
		Container:    container,
		Name:         name,
		Size:         int64(len(data)),
		ContentType:  contentTypeFor(name),
		AccessLabels: accessLabels,
		UploadedAt:   time.Now().UTC(),
	}

	err := s.db.Update(func(tx *badger.Txn) error {
		if err := tx.Set(makeObjectKey(container, name), data); err != nil {
			return err
		}
		return tx.Set(makeMetaKey(container, name), storage.MarshalObjectInfo(info))
	})
	if err != nil {
		return "", fmt.Errorf("put object %s/%s: %w", container, name, err)
	}

	s.logger.Debug("object stored", "container", container, "name", name, "size", info.Size)
	return info.URL(), nil
}

// GetObject retrieves the payload and metadata for container/name.
func (s *Store) GetObject(ctx context.Context, container, name string) ([]byte, storage.ObjectInfo, error) {
	var data []byte
	var info storage.ObjectInfo

	if err := validateKey(container, name); err != nil {
		return nil, info, err
	}
	if err := ctx.Err(); err != nil {
		return nil, info, err
	}

	err := s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeObjectKey(container, name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		if err != nil {
			return err
		}

		metaItem, err := tx.Get(makeMetaKey(container, name))
		if err != nil {
			return err
		}
		return metaItem.Value(func(val []byte) error {
			info, err = storage.UnmarshalObjectInfo(val)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, info, fmt.Errorf("%w: %s/%s", storage.ErrObjectNotFound, container, name)
	}
	if err != nil {
		return nil, info, fmt.Errorf("get object %s/%s: %w", container, name, err)
	}
	return data, info, nil
}

// ListObjects returns metadata for every object in the container, ordered by
// name.
func (s *Store) ListObjects(ctx context.Context, container string) ([]storage.ObjectInfo, error) {
	if container == "" {
		return nil, storage.ErrContainerRequired
	}

	var infos []storage.ObjectInfo
	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(metaPrefix + container + "/")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				info, err := storage.UnmarshalObjectInfo(val)
				if err != nil {
					return err
				}
				infos = append(infos, info)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list objects %s: %w", container, err)
	}
	return infos, nil
}

// DeleteObject removes container/name and its metadata.
func (s *Store) DeleteObject(ctx context.Context, container, name string) error {
	if err := validateKey(container, name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *badger.Txn) error {
		if _, err := tx.Get(makeObjectKey(container, name)); err != nil {
			return err
		}
		if err := tx.Delete(makeObjectKey(container, name)); err != nil {
			return err
		}
		return tx.Delete(makeMetaKey(container, name))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s/%s", storage.ErrObjectNotFound, container, name)
	}
	if err != nil {
		return fmt.Errorf("delete object %s/%s: %w", container, name, err)
	}
	return nil
}

func makeObjectKey(container, name string) []byte {
	return []byte(objectPrefix + container + "/" + name)
}

func makeMetaKey(container, name string) []byte {
	return []byte(metaPrefix + container + "/" + name)
}

func validateKey(container, name string) error {
	if container == "" {
		return storage.ErrContainerRequired
	}
	if name == "" {
		return storage.ErrObjectNameRequired
	}
	return nil
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
