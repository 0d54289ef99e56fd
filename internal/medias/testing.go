package medias

import (
	"context"
	"os"
	"path/filepath"

	"github.com/julien-sobczak/the-noteexporter/internal/helpers"
)

// RandomExporter generates files containing fake data.
// Useful in tests to avoid depending on a diagram exporter installation.
type RandomExporter struct {
	listeners []func(cmd string, args ...string)
}

func NewRandomExporter() *RandomExporter {
	return &RandomExporter{}
}

func (c *RandomExporter) OnPreGeneration(fn func(cmd string, args ...string)) {
	c.listeners = append(c.listeners, fn)
}

func (c *RandomExporter) ExportToRaster(ctx context.Context, src, dest string, scale int) error {
	if err := checkPaths(src, dest, ".png"); err != nil {
		return err
	}
	return c.toFakeFile(src, dest)
}

func (c *RandomExporter) ExportToVector(ctx context.Context, src, dest string) error {
	if err := checkPaths(src, dest, ".svg"); err != nil {
		return err
	}
	return c.toFakeFile(src, dest)
}

func (c *RandomExporter) toFakeFile(src, dest string) error {
	for _, fn := range c.listeners {
		fn("export", src, dest)
	}
	hash := helpers.HashFromFileName(filepath.Base(dest)) // Ignore Dir as tests often uses t.TempDir()
	return os.WriteFile(dest, []byte(hash), 0644)
}
