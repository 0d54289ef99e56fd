// Package vault exposes an Obsidian vault stored on the local file system.
//
// Paths inside the vault are relative and use forward slashes ("notes/Go.md").
// Output paths (export destinations) are absolute host paths.
package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	cp "github.com/otiai10/copy"
	"golang.org/x/text/unicode/norm"
)

// ErrNotFound is returned when a vault file does not exist.
var ErrNotFound = errors.New("vault: file not found")

// Vault gives access to the vault files and to the host file system.
type Vault interface {
	Root() string
	Abs(rel string) (string, error)
	Read(rel string) ([]byte, error)
	Exists(rel string) bool
	List(dir string, filter func(rel string, dir bool) bool) ([]string, error)

	WriteFile(dest string, content []byte) error
	MkdirAll(dir string) error
	CopyFile(src, dest string) error
	CopyTree(src, dest string, skip func(rel string, dir bool) bool) error
}

// FS is the file-system implementation of Vault and Metadata.
type FS struct {
	root string

	mu    sync.Mutex
	index map[string][]string // normalized basename => relative paths
	paths map[string]string   // normalized relative path => relative path
	notes map[string]*cachedNote
}

var _ Vault = (*FS)(nil)

// Open returns the vault rooted at dir.
func Open(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault: %s is not a directory", abs)
	}
	return &FS{
		root:  abs,
		notes: make(map[string]*cachedNote),
	}, nil
}

func (f *FS) Root() string {
	return f.root
}

// Abs resolves a relative path against the vault root and rejects
// any result that escapes it (directory traversal).
func (f *FS) Abs(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("vault: absolute paths not allowed: %s", rel)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("vault: path escapes vault root: %s", rel)
	}
	return abs, nil
}

// Rel returns the vault-relative path of an absolute path.
func (f *FS) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(f.root, abs)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("vault: %s is outside the vault", abs)
	}
	return filepath.ToSlash(rel), nil
}

func (f *FS) Read(rel string) ([]byte, error) {
	abs, err := f.Abs(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	return data, err
}

func (f *FS) Exists(rel string) bool {
	abs, err := f.Abs(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}

// List walks dir (relative to root) and returns the relative paths of regular files.
// Hidden directories (.obsidian, .git, .nte...) are never traversed.
// The filter receives every path and excludes it when returning false.
func (f *FS) List(dir string, filter func(rel string, dir bool) bool) ([]string, error) {
	base, err := f.Abs(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == base {
			return nil
		}
		rel, err := f.Rel(p)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if filter != nil && !filter(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if filter != nil && !filter(rel, false) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	return out, err
}

func (f *FS) WriteFile(dest string, content []byte) error {
	if err := f.MkdirAll(filepath.Dir(dest)); err != nil {
		return err
	}
	return os.WriteFile(dest, content, 0644)
}

func (f *FS) MkdirAll(dir string) error {
	return os.MkdirAll(dir, 0755)
}

func (f *FS) CopyFile(src, dest string) error {
	if err := f.MkdirAll(filepath.Dir(dest)); err != nil {
		return err
	}
	return cp.Copy(src, dest)
}

// CopyTree copies a directory recursively. skip receives paths relative to src.
func (f *FS) CopyTree(src, dest string, skip func(rel string, dir bool) bool) error {
	return cp.Copy(src, dest, cp.Options{
		Skip: func(info os.FileInfo, from, to string) (bool, error) {
			if skip == nil || from == src {
				return false, nil
			}
			rel, err := filepath.Rel(src, from)
			if err != nil {
				return false, err
			}
			return skip(filepath.ToSlash(rel), info.IsDir()), nil
		},
	})
}

// Refresh forgets the file index so that created or deleted files are noticed.
func (f *FS) Refresh() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.index = nil
	f.paths = nil
}

// loadIndex lists all vault files once. Callers must hold f.mu.
func (f *FS) loadIndex() error {
	if f.index != nil {
		return nil
	}
	files, err := f.List("", nil)
	if err != nil {
		return err
	}
	f.index = make(map[string][]string)
	f.paths = make(map[string]string)
	for _, rel := range files {
		key := normalize(path.Base(rel))
		f.index[key] = append(f.index[key], rel)
		f.paths[normalize(rel)] = rel
	}
	return nil
}

// normalize makes path comparisons insensitive to case and Unicode composition.
// macOS stores decomposed file names while notes usually contain composed characters.
func normalize(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}
