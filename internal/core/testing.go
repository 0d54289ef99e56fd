package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julien-sobczak/the-noteexporter/internal/testutil"
	"github.com/julien-sobczak/the-noteexporter/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reset forces singletons to be recreated. Useful between unit tests.
func Reset() {
	configOnce.Reset()
	loggerOnce.Reset()
}

/* Fixtures */

// SetUpVaultFromGoldenDir populates a temp directory containing a valid vault.
func SetUpVaultFromGoldenDir(t *testing.T) string {
	return SetUpVaultFromGoldenDirNamed(t, t.Name())
}

// SetUpVaultFromGoldenDirNamed populates a temp directory based on the given golden dir name.
func SetUpVaultFromGoldenDirNamed(t *testing.T, testname string) string {
	dirname := testutil.SetUpFromGoldenDirNamed(t, testname)
	configureDir(t, dirname)
	return dirname
}

// SetUpVaultFromFileContent populates a temp vault containing a single note.
func SetUpVaultFromFileContent(t *testing.T, name, content string) string {
	filename := testutil.SetUpFromFileContent(t, name, content)
	dirname := filepath.Dir(filename)
	configureDir(t, dirname)
	return filename
}

// SetUpVaultFromTempDir populates a temp directory containing an empty vault.
func SetUpVaultFromTempDir(t *testing.T) string {
	dirname := t.TempDir()
	configureDir(t, dirname)
	return dirname
}

func configureDir(t *testing.T, dirname string) {
	nteDir := filepath.Join(dirname, ".nte")
	if _, err := os.Stat(nteDir); os.IsNotExist(err) {
		// Create a default configuration if not exists for CurrentConfig() to work
		if err := os.Mkdir(nteDir, os.ModePerm); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(nteDir, "config"), []byte(`
[diagrams]
command = "random"

[[presets]]
name = "plain"
format = "plain"
output_dir = "${vaultDir}/export"
`), os.ModePerm); err != nil {
			t.Fatal(err)
		}
	}
	// Force the application to consider the temporary directory as the vault
	os.Setenv("NTE_HOME", dirname)
	t.Cleanup(func() {
		os.Unsetenv("NTE_HOME")
		Reset()
	})

	// Force debug level in tests to diagnose more easily
	CurrentLogger().SetVerboseLevel(VerboseDebug)
	CurrentLogger().Debugf("✨ Set up directory %q", nteDir)
}

/* Reproducible Tests */

// FreezeAt wraps the clock API to register the cleanup function at the end of the test.
func FreezeAt(t *testing.T, point time.Time) time.Time {
	clock.FreezeAt(point)
	t.Cleanup(clock.Unfreeze)
	return point
}

/* Test Helpers */

func mustReadFile(t *testing.T, path string) string {
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func assertFileExists(t *testing.T, path string) {
	_, err := os.Stat(path)
	assert.NoError(t, err, "missing file %s", path)
}

func assertNoFile(t *testing.T, path string) {
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "unexpected file %s", path)
}

func assertTrimEqual(t *testing.T, expected string, actual string) {
	assert.Equal(t, strings.TrimSpace(expected), strings.TrimSpace(actual))
}
