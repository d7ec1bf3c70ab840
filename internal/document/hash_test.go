package document

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func TestHashFile_DeterministicAndContentSensitive(t *testing.T) {
	a := writeTempFile(t, "a.txt", []byte("identical bytes"))
	b := writeTempFile(t, "b.txt", []byte("identical bytes"))
	c := writeTempFile(t, "c.txt", []byte("different bytes"))

	hashA, err := HashFile(a)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	hashB, err := HashFile(b)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	hashC, err := HashFile(c)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}

	if hashA != hashB {
		t.Errorf("identical content produced different hashes: %s vs %s", hashA, hashB)
	}
	if hashA == hashC {
		t.Error("different content produced the same hash")
	}
	if len(hashA) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(hashA))
	}
}

func TestHashFile_KnownVector(t *testing.T) {
	// SHA-256 of the empty input.
	path := writeTempFile(t, "empty.txt", nil)
	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Errorf("hash = %s, want %s", got, want)
	}
}

func TestHashFile_Missing(t *testing.T) {
	if _, err := HashFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
