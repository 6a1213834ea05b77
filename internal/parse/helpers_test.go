// ABOUTME: Shared fixtures for parser tests.
// ABOUTME: Builds in-memory CSV readers and temp files from literal lines.
package parse

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func csvOf(lines ...string) io.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func writeFixture(t *testing.T, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}
