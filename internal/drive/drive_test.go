package drive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractFolderID(t *testing.T) {
	cases := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{"https://drive.google.com/drive/folders/1AbC-def_123", "1AbC-def_123", false},
		{"https://drive.google.com/drive/folders/1AbC-def_123?usp=sharing", "1AbC-def_123", false},
		{"https://drive.google.com/open?id=1AbC-def_123", "1AbC-def_123", false},
		{"https://drive.google.com/folderview?x=1&id=1AbC-def_123", "1AbC-def_123", false},
		{"1AbC-def_123", "1AbC-def_123", false},
		{"https://drive.google.com/drive/my-drive", "", true},
		{"", "", true},
		{"has spaces", "", true},
	}
	for _, c := range cases {
		got, err := ExtractFolderID(c.ref)
		if c.wantErr {
			if !errors.Is(err, ErrMalformedReference) {
				t.Errorf("ExtractFolderID(%q): want ErrMalformedReference, got %v", c.ref, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ExtractFolderID(%q): %v", c.ref, err)
			continue
		}
		if got != c.want {
			t.Errorf("ExtractFolderID(%q) = %q, want %q", c.ref, got, c.want)
		}
	}
}

func TestLocalStoreFolderLifecycle(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewLocalStore(tmpDir, "evidence/")
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	// Absent folder is not an error
	f, err := store.FindFolder(ctx, "root", "Sector Norte")
	if err != nil {
		t.Fatalf("FindFolder failed: %v", err)
	}
	if f != nil {
		t.Fatalf("FindFolder should return nil for absent folder, got %+v", f)
	}

	created, err := store.CreateFolder(ctx, "root", "Sector Norte")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	if created.ID != "root/Sector Norte" {
		t.Errorf("folder id = %q, want %q", created.ID, "root/Sector Norte")
	}

	found, err := store.FindFolder(ctx, "root", "Sector Norte")
	if err != nil {
		t.Fatalf("FindFolder failed: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("FindFolder after create = %+v, want id %q", found, created.ID)
	}
}

func TestLocalStoreUploadAndList(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewLocalStore(tmpDir, "evidence/")
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	folder, err := store.CreateFolder(ctx, "", "acme corp")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}

	data := []byte("fake png data for testing")
	file, err := store.UploadFile(ctx, folder.ID, "search_acme_20250101_120000.png", data)
	if err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}
	if file.Size != int64(len(data)) {
		t.Errorf("file size = %d, want %d", file.Size, len(data))
	}

	// Verify no temp file remained
	path := filepath.Join(tmpDir, "evidence", "acme corp", "search_acme_20250101_120000.png")
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should be removed after upload")
	}

	// Verify data integrity
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read uploaded file: %v", err)
	}
	if string(got) != string(data) {
		t.Error("uploaded data mismatch")
	}

	names, err := store.List(ctx, folder.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 1 || names[0] != "search_acme_20250101_120000.png" {
		t.Errorf("List = %v, want the uploaded file", names)
	}
}

func TestBlobStoreFolderLifecycle(t *testing.T) {
	store, err := NewStore(Config{Backend: "mem", Prefix: "evidence/"})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	f, err := store.FindFolder(ctx, "root", "sector sur")
	if err != nil {
		t.Fatalf("FindFolder failed: %v", err)
	}
	if f != nil {
		t.Fatalf("FindFolder should return nil for absent folder, got %+v", f)
	}

	created, err := store.CreateFolder(ctx, "root", "sector sur")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}

	found, err := store.FindFolder(ctx, "root", "sector sur")
	if err != nil {
		t.Fatalf("FindFolder failed: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("FindFolder after create = %+v, want id %q", found, created.ID)
	}
}

func TestBlobStoreUploadAndList(t *testing.T) {
	store, err := NewStore(Config{Backend: "mem", Prefix: "evidence/"})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	folder, err := store.CreateFolder(ctx, "", "beta llc")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}

	if _, err := store.UploadFile(ctx, folder.ID, "match_beta_20250101_120000.png", []byte("png")); err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}

	names, err := store.List(ctx, folder.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 1 || names[0] != "match_beta_20250101_120000.png" {
		t.Errorf("List = %v, want the uploaded file without the folder marker", names)
	}
}

func TestNewStoreUnknownBackend(t *testing.T) {
	if _, err := NewStore(Config{Backend: "ftp"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
