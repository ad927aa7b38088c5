// Package listfile reads and writes the newline-delimited lists vidqueue keeps
// on disk: the LLM API key list and the URL queue.
package listfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"vidqueue/internal/fileutil"
)

// ErrMissing reports that the list file has never been written.
var ErrMissing = errors.New("list file missing")

// File is a newline-delimited list stored at a fixed path.
type File struct {
	path string
	mu   sync.Mutex
}

// New returns a list bound to path. The file is not touched until used.
func New(path string) *File {
	return &File{path: path}
}

// Path returns the backing file location.
func (f *File) Path() string {
	return f.path
}

// Read returns every non-blank line with surrounding whitespace removed, in
// file order. A missing file yields ErrMissing; an existing empty file yields
// an empty slice and no error.
func (f *File) Read() ([]string, error) {
	f.mu.Lock()
	data, err := os.ReadFile(f.path)
	f.mu.Unlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, f.path)
		}
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return ParseLines(data), nil
}

// Write replaces the file content verbatim.
func (f *File) Write(content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fileutil.WriteFileAtomic(f.path, []byte(content), 0o600)
}

// ParseLines splits data into trimmed, non-blank lines.
func ParseLines(data []byte) []string {
	lines := make([]string, 0, bytes.Count(data, []byte{'\n'})+1)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
