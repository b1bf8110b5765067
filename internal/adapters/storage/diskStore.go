package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

var ErrOutsideStore = errors.New("asset path is outside the image store")

// DiskStore keeps uploaded images in Dir and hands out paths of the form
// "<Prefix>/<stored name>", which is also the URL they are served under.
type DiskStore struct {
	Dir    string
	Prefix string
	now    func() time.Time
}

func NewDiskStore(dir, prefix string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &DiskStore{Dir: dir, Prefix: strings.Trim(prefix, "/"), now: time.Now}, nil
}

// Save stores r as "<timestamp>-<original name>" and returns its path.
func (s *DiskStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	base := filepath.Base(filepath.Clean("/" + originalName))
	if base == "/" || base == "." {
		base = "image"
	}
	stamp := strings.ReplaceAll(s.now().UTC().Format("2006-01-02T15:04:05.000Z"), ":", "-")
	name := stamp + "-" + base

	f, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create asset: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write asset: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close asset: %w", err)
	}
	return path.Join(s.Prefix, name), nil
}

// Delete removes the asset behind p. An asset that is already gone counts as
// deleted. Paths that do not belong to the store are refused.
func (s *DiskStore) Delete(ctx context.Context, p string) error {
	name, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete asset %s: %w", p, err)
	}
	return nil
}

// Exists reports whether p names a stored asset.
func (s *DiskStore) Exists(p string) bool {
	name, err := s.resolve(p)
	if err != nil {
		return false
	}
	_, err = os.Stat(filepath.Join(s.Dir, name))
	return err == nil
}

func (s *DiskStore) resolve(p string) (string, error) {
	clean := path.Clean("/" + strings.TrimPrefix(p, "/"))
	rest, ok := strings.CutPrefix(clean, "/"+s.Prefix+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", fmt.Errorf("%w: %q", ErrOutsideStore, p)
	}
	return rest, nil
}
