package credentials

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// FileSource reads records from a local text file.
type FileSource struct {
	path string
}

// NewFileSource returns a Source backed by path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Records implements Source.
func (s *FileSource) Records(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, s.path)
		}
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, s.path, err)
	}
	defer file.Close()

	records, err := ParseRecords(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return records, nil
}

// Describe implements Source.
func (s *FileSource) Describe() string {
	return "file " + s.path
}
