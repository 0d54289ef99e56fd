package medias

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// DiagramExporter renders Excalidraw drawings to images.
type DiagramExporter interface {
	OnPreGeneration(func(cmd string, args ...string))
	ExportToRaster(ctx context.Context, src, dest string, scale int) error
	ExportToVector(ctx context.Context, src, dest string) error
}

// DefaultDiagramCommand is the executable used when none is configured.
const DefaultDiagramCommand = "excalidraw-brute-export-cli"

// CommandExporter delegates the export to an external executable.
//
// The executable must accept the following arguments:
//
//	<exe> -i <src> --format png|svg [--scale N] -o <dest>
type CommandExporter struct {
	exe       string
	listeners []func(cmd string, args ...string)
}

func NewCommandExporter(command string) (*CommandExporter, error) {
	if command == "" {
		command = DefaultDiagramCommand
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return nil, fmt.Errorf("executable %q not found in $PATH", command)
	}
	return &CommandExporter{exe: path}, nil
}

func (c *CommandExporter) OnPreGeneration(fn func(cmd string, args ...string)) {
	c.listeners = append(c.listeners, fn)
}

func (c *CommandExporter) notifyListeners(cmd string, args ...string) {
	for _, fn := range c.listeners {
		fn(cmd, args...)
	}
}

// ExportToRaster exports a drawing to PNG.
func (c *CommandExporter) ExportToRaster(ctx context.Context, src, dest string, scale int) error {
	if err := checkPaths(src, dest, ".png"); err != nil {
		return err
	}
	if scale < 1 {
		scale = 1
	}
	return c.run(ctx, "-i", src, "--format", "png", "--scale", strconv.Itoa(scale), "-o", dest)
}

// ExportToVector exports a drawing to SVG.
func (c *CommandExporter) ExportToVector(ctx context.Context, src, dest string) error {
	if err := checkPaths(src, dest, ".svg"); err != nil {
		return err
	}
	return c.run(ctx, "-i", src, "--format", "svg", "-o", dest)
}

func (c *CommandExporter) run(ctx context.Context, args ...string) error {
	c.notifyListeners(c.exe, args...)
	cmd := exec.CommandContext(ctx, c.exe, args...)

	// Dump output to troubleshoot
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w: %s", filepath.Base(c.exe), err, strings.TrimSpace(string(output)))
	}
	return nil
}

// checkPaths validates the destination extension and the presence of the source file.
func checkPaths(src, dest, ext string) error {
	destExt := strings.ToLower(filepath.Ext(dest))
	if destExt != ext {
		return fmt.Errorf("target file must use extension %s. Got: %s", ext, destExt)
	}
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("missing diagram %s", src)
		}
		return err
	}
	return nil
}
