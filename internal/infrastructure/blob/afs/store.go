// Package afs implements blob.Store over an afero filesystem: the OS
// filesystem for the fs driver, an in-memory one for the memory driver.
package afs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"healthops/internal/core/blob"
)

const metaSuffix = ".meta"

// Store keeps each object as a file plus a JSON sidecar with its attributes.
type Store struct {
	fs     afero.Fs
	driver blob.Driver
}

// NewFS returns a store rooted at dir on the local filesystem.
func NewFS(dir string) (*Store, error) {
	if dir == "" {
		dir = "./archive"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Store{fs: afero.NewBasePathFs(afero.NewOsFs(), dir), driver: blob.DriverFilesystem}, nil
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Store {
	// Rooting at "/" keeps relative keys and walked paths on the same absolute form.
	return &Store{fs: afero.NewBasePathFs(afero.NewMemMapFs(), "/"), driver: blob.DriverMemory}
}

func (s *Store) Driver() blob.Driver { return s.driver }

type metaFile struct {
	ContentType string            `json:"contentType,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Size        int64             `json:"size"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// cleanKey rejects keys that would escape the root.
func cleanKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.New("empty key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return path.Clean(key), nil
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, opts blob.PutOptions) (blob.Info, error) {
	k, err := cleanKey(key)
	if err != nil {
		return blob.Info{}, err
	}
	if ok, _ := afero.Exists(s.fs, k); ok {
		return blob.Info{}, fmt.Errorf("%w: %s", blob.ErrExists, key)
	}
	if err := s.fs.MkdirAll(path.Dir(k), 0o755); err != nil {
		return blob.Info{}, err
	}

	tmp, err := afero.TempFile(s.fs, path.Dir(k), ".tmp-*")
	if err != nil {
		return blob.Info{}, err
	}
	tmpName := tmp.Name()
	defer func() { _ = s.fs.Remove(tmpName) }()

	size, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return blob.Info{}, fmt.Errorf("write %s: %w", key, err)
	}
	if err := s.fs.Rename(tmpName, k); err != nil {
		return blob.Info{}, fmt.Errorf("commit %s: %w", key, err)
	}

	mf := metaFile{ContentType: opts.ContentType, Metadata: opts.Metadata, Size: size, CreatedAt: time.Now().UTC()}
	raw, err := json.Marshal(mf)
	if err != nil {
		return blob.Info{}, err
	}
	if err := afero.WriteFile(s.fs, k+metaSuffix, raw, 0o644); err != nil {
		return blob.Info{}, err
	}
	return mf.info(key), nil
}

func (s *Store) Get(ctx context.Context, key string) (blob.Info, io.ReadCloser, error) {
	info, err := s.Head(ctx, key)
	if err != nil {
		return blob.Info{}, nil, err
	}
	f, err := s.fs.Open(path.Clean(key))
	if err != nil {
		return blob.Info{}, nil, mapErr(key, err)
	}
	return info, f, nil
}

func (s *Store) Head(ctx context.Context, key string) (blob.Info, error) {
	k, err := cleanKey(key)
	if err != nil {
		return blob.Info{}, err
	}
	mf, err := s.readMeta(k)
	if err != nil {
		return blob.Info{}, mapErr(key, err)
	}
	return mf.info(k), nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]blob.Info, error) {
	var infos []blob.Info
	err := afero.Walk(s.fs, "", func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() || !strings.HasSuffix(p, metaSuffix) {
			return nil
		}
		key := strings.TrimPrefix(filepath.ToSlash(strings.TrimSuffix(p, metaSuffix)), "/")
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		mf, err := s.readMeta(key)
		if err != nil {
			return err
		}
		infos = append(infos, mf.info(key))
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	k, err := cleanKey(key)
	if err != nil {
		return false, err
	}
	if ok, _ := afero.Exists(s.fs, k); !ok {
		return false, nil
	}
	if err := s.fs.Remove(k); err != nil {
		return false, err
	}
	_ = s.fs.Remove(k + metaSuffix)
	return true, nil
}

func (s *Store) readMeta(key string) (metaFile, error) {
	var mf metaFile
	raw, err := afero.ReadFile(s.fs, key+metaSuffix)
	if err != nil {
		return mf, err
	}
	if err := json.Unmarshal(raw, &mf); err != nil {
		return mf, fmt.Errorf("decode metadata of %s: %w", key, err)
	}
	return mf, nil
}

func (mf metaFile) info(key string) blob.Info {
	return blob.Info{
		Key:          key,
		Size:         mf.Size,
		ContentType:  mf.ContentType,
		Metadata:     mf.Metadata,
		LastModified: mf.CreatedAt,
	}
}

func mapErr(key string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", blob.ErrNotFound, key)
	}
	return err
}

var _ blob.Store = (*Store)(nil)
