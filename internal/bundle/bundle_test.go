package bundle

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestWriteRoundTrip(t *testing.T) {
	srcDir := t.TempDir()
	files := map[string]string{
		"search_acme_20250101_120000_001.png": "png-data-1",
		"match_beta_20250101_120001_002.png":  "png-data-2",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(srcDir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	indexPath := filepath.Join(t.TempDir(), "sectors_index.json")
	if err := os.WriteFile(indexPath, []byte(`{"sectors":{}}`), 0644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(t.TempDir(), "evidence.tar.zst")
	info, err := Write(dst, srcDir, indexPath)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if info.Files != 3 {
		t.Errorf("info.Files = %d, want 3", info.Files)
	}

	// Read it back
	f, err := os.Open(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zr, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	got := make(map[string]string)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("tar next: %v", err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("tar read: %v", err)
		}
		got[hdr.Name] = string(data)
	}

	var names []string
	for name := range got {
		names = append(names, name)
	}
	sort.Strings(names)
	want := []string{
		"match_beta_20250101_120001_002.png",
		"search_acme_20250101_120000_001.png",
		"sectors_index.json",
	}
	if len(names) != len(want) {
		t.Fatalf("archive names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("archive names = %v, want %v", names, want)
		}
	}
	if got["search_acme_20250101_120000_001.png"] != "png-data-1" {
		t.Error("archived content mismatch")
	}
}

func TestWriteEmptyDir(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "empty.tar.zst")
	info, err := Write(dst, t.TempDir())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if info.Files != 0 {
		t.Errorf("info.Files = %d, want 0", info.Files)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("bundle file should exist: %v", err)
	}
}
