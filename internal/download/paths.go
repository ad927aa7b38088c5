package download

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SafeJoin joins name onto dir and rejects results that leave dir or that
// carry directory components of their own.
func SafeJoin(dir, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: empty name", ErrUnsafePath)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	base, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve save directory: %w", err)
	}
	target := filepath.Join(base, name)
	rel, err := filepath.Rel(base, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	if filepath.Dir(target) != base {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return target, nil
}

// outputTemplate turns a target path into a yt-dlp output template. Percent
// signs in the name are escaped so titles cannot inject template fields.
func outputTemplate(target string) string {
	return strings.ReplaceAll(target, "%", "%%") + ".%(ext)s"
}

// FinalName appends the 1-based task index to name.
func FinalName(name string, index int) string {
	return fmt.Sprintf("%s [%d]", name, index)
}
