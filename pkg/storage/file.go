package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/askupi/insights/pkg/common"
)

// File keeps one JSON file per record under dir.
type File struct {
	dir string
}

func NewFile(dir string) *File {
	return &File{
		dir: dir,
	}
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *File) Read(
	_ context.Context,
	key string,
) ([]byte, error) {
	b, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, errors.Wrapf(common.ErrStorageUnavailable, "read %s: %v", key, err)
	}

	return b, nil
}

func (f *File) Write(
	_ context.Context,
	key string,
	value []byte,
) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return errors.Wrapf(common.ErrStorageUnavailable, "mkdir %s: %v", f.dir, err)
	}

	if err := os.WriteFile(f.path(key), value, 0o644); err != nil {
		return errors.Wrapf(common.ErrStorageUnavailable, "write %s: %v", key, err)
	}

	return nil
}

func (f *File) Usage(
	_ context.Context,
) (Info, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return usageInfo(0), nil
		}

		return Info{}, errors.Wrapf(common.ErrStorageUnavailable, "read dir %s: %v", f.dir, err)
	}

	var used int64
	for _, entry := range entries {
		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}

		used += info.Size() + int64(len(entry.Name()))
	}

	return usageInfo(used), nil
}
