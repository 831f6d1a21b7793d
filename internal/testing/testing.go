// Package testing holds helpers shared by the nowplaying test suites.
//
// It imports nothing from the module so any package can use it.
package testing

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

// FailingWriter rejects every write.
type FailingWriter struct{}

func (FailingWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}

// LimitedWriter forwards to target until max writes have happened, then fails.
type LimitedWriter struct {
	max    int
	writes int
	target io.Writer
}

func NewLimitedWriter(max int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{max: max, target: target}
}

func (l *LimitedWriter) Write(p []byte) (int, error) {
	if l.writes >= l.max {
		return 0, errors.New("write limit exceeded")
	}
	l.writes++
	return l.target.Write(p)
}

// RoundTripFunc adapts a function to [http.RoundTripper].
type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// StubClient returns an HTTP client whose every request yields resp and err.
func StubClient(resp *http.Response, err error) *http.Client {
	return &http.Client{Transport: RoundTripFunc(func(*http.Request) (*http.Response, error) {
		return resp, err
	})}
}

// BrokenBody is a response body whose reads fail.
type BrokenBody struct{}

func (BrokenBody) Read([]byte) (int, error) { return 0, errors.New("read failed") }
func (BrokenBody) Close() error             { return nil }

// TempPath joins name onto a fresh per-test directory.
func TempPath(t *testing.T, name ...string) string {
	t.Helper()
	return filepath.Join(append([]string{t.TempDir()}, name...)...)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		t.Errorf("file does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(content)
}
