package helpers

import (
	"crypto/md5"
	"fmt"
	"os"
)

// Hash is an utility to determine a MD5 hash (acceptable as not used for security reasons).
func Hash(bytes []byte) string {
	h := md5.New()
	h.Write(bytes)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// HashFromFileName hashes a file name, not its content.
// Fake exporters use it to generate stable content.
func HashFromFileName(path string) string {
	return Hash([]byte(path))
}

// SameContent reports if the file at path already holds the given content.
// A missing file never matches.
func SameContent(path string, content []byte) bool {
	existing, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return Hash(existing) == Hash(content)
}
