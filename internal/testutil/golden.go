package testutil

import (
	"os"
	"path/filepath"
	"testing"

	cp "github.com/otiai10/copy"
)

// SetUpFromFileContent creates a temp file based on the given file content.
func SetUpFromFileContent(t *testing.T, filename string, content string) string {
	dir := t.TempDir()

	fileOut := filepath.Join(dir, filename)
	if err := os.MkdirAll(filepath.Dir(fileOut), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fileOut, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	return fileOut
}

// SetUpFromGoldenDir copies the golden directory of the current test in a temp directory.
func SetUpFromGoldenDir(t *testing.T) string {
	return SetUpFromGoldenDirNamed(t, t.Name())
}

// SetUpFromGoldenDirNamed copies testdata/<name> in a temp directory.
// Exports write next to the notes so the golden directory is copied, not symlinked.
func SetUpFromGoldenDirNamed(t *testing.T, name string) string {
	dirIn := filepath.Join("testdata", name)
	dirOut := filepath.Join(t.TempDir(), filepath.Base(name))

	if err := cp.Copy(dirIn, dirOut); err != nil {
		t.Fatalf("failed copying golden directory %s: %v", dirIn, err)
	}

	return dirOut
}

// GoldenFile reads the content of the golden file of the current test.
func GoldenFile(t *testing.T) []byte {
	return GoldenFileNamed(t, t.Name()+".md")
}

// GoldenFileNamed reads the content of the given golden file.
func GoldenFileNamed(t *testing.T, filename string) []byte {
	path := filepath.Join("testdata", filename)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed reading golden file %s: %v", path, err)
	}
	return b
}
