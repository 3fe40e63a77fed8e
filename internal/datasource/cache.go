package datasource

import (
	"context"
	"crypto/sha1"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"spirits-dashboard/internal/models"
)

const cacheVersion = "v1"

// TableCache stores parsed tables keyed by the on-disk identity of their
// source files. Entries are never invalidated except by a changed key.
type TableCache interface {
	Get(ctx context.Context, key string) (*models.Tables, bool, error)
	Set(ctx context.Context, key string, tables *models.Tables) error
}

type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*models.Tables, bool, error) { return nil, false, nil }
func (NoopCache) Set(context.Context, string, *models.Tables) error         { return nil }

// fileKey hashes path, size and modification time of every file, so editing
// either table produces a new key.
func fileKey(paths ...string) (string, error) {
	h := sha1.New()
	fmt.Fprint(h, cacheVersion)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "|%s|%d|%d", abs, info.Size(), info.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// GobCache keeps one gob file per key under Dir.
type GobCache struct {
	Dir string
}

func NewGobCache(dir string) *GobCache {
	return &GobCache{Dir: dir}
}

func (c *GobCache) filename(key string) string {
	return filepath.Join(c.Dir, "tables_"+key+".gob")
}

func (c *GobCache) Get(_ context.Context, key string) (*models.Tables, bool, error) {
	file, err := os.Open(c.filename(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer file.Close()

	var tables models.Tables
	if err := gob.NewDecoder(file).Decode(&tables); err != nil {
		return nil, false, fmt.Errorf("decode table cache: %w", err)
	}
	return &tables, true, nil
}

func (c *GobCache) Set(_ context.Context, key string, tables *models.Tables) error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.Dir, "tables_*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(tables); err != nil {
		tmp.Close()
		return fmt.Errorf("encode table cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.filename(key))
}
