package listfile_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"vidqueue/internal/listfile"
)

func TestReadMissingFile(t *testing.T) {
	list := listfile.New(filepath.Join(t.TempDir(), "links.txt"))
	if _, err := list.Read(); !errors.Is(err, listfile.ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
}

func TestWriteVerbatimAndReadTrimmed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.txt")
	list := listfile.New(path)
	content := "  https://a.example/1  \n\n\r\nhttps://b.example/2\r\n   \n"
	if err := list.Write(content); err != nil {
		t.Fatalf("Write: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if string(raw) != content {
		t.Fatalf("expected verbatim content, got %q", raw)
	}

	got, err := list.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []string{"https://a.example/1", "https://b.example/2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestReadEmptyFile(t *testing.T) {
	list := listfile.New(filepath.Join(t.TempDir(), "api_keys.txt"))
	if err := list.Write("\n  \n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := list.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %v", got)
	}
}
