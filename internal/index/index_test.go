package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "sectors_index.json"))

	doc, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load on missing file failed: %v", err)
	}
	if len(doc.Sectors) != 0 {
		t.Fatalf("expected empty document, got %d sectors", len(doc.Sectors))
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sectors_index.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewStore(path).Load(context.Background()); err == nil {
		t.Fatal("Load on corrupt file should fail")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sectors_index.json")
	store := NewStore(path)
	ctx := context.Background()

	doc := &Document{Sectors: make(map[string]*Sector)}
	doc.UpsertSector("Sector Norte", "folder-1", false)
	if err := doc.AddAlly("Sector Norte", "acme corp", "folder-2"); err != nil {
		t.Fatalf("AddAlly failed: %v", err)
	}
	shot := Screenshot{
		Name:       "search_acme_20250101_120000.png",
		FileID:     "file-1",
		CapturedAt: time.Now().UTC(),
	}
	if err := doc.RecordScreenshot("Sector Norte", "acme corp", shot); err != nil {
		t.Fatalf("RecordScreenshot failed: %v", err)
	}

	if err := store.Save(ctx, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// No temp file left behind
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should be removed after Save")
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	sector, ok := loaded.Sectors["Sector Norte"]
	if !ok {
		t.Fatal("loaded document missing sector")
	}
	if sector.FolderID != "folder-1" {
		t.Errorf("sector folder id = %q, want folder-1", sector.FolderID)
	}
	ally, ok := sector.Allies["acme corp"]
	if !ok {
		t.Fatal("loaded sector missing ally")
	}
	if ally.FolderID != "folder-2" {
		t.Errorf("ally folder id = %q, want folder-2", ally.FolderID)
	}
	if len(ally.Screenshots) != 1 || ally.Screenshots[0].Name != shot.Name {
		t.Errorf("screenshots = %+v, want one entry %q", ally.Screenshots, shot.Name)
	}
}

func TestUpsertSectorMergeKeepsAllies(t *testing.T) {
	doc := &Document{Sectors: make(map[string]*Sector)}
	doc.UpsertSector("Sector Sur", "folder-1", false)
	if err := doc.AddAlly("Sector Sur", "beta llc", "folder-2"); err != nil {
		t.Fatalf("AddAlly failed: %v", err)
	}

	doc.UpsertSector("Sector Sur", "folder-new", true)

	sector := doc.Sectors["Sector Sur"]
	if sector.FolderID != "folder-new" {
		t.Errorf("folder id = %q, want folder-new", sector.FolderID)
	}
	if _, ok := sector.Allies["beta llc"]; !ok {
		t.Error("merge upsert should keep existing allies")
	}
}

func TestUpsertSectorResetDropsAllies(t *testing.T) {
	doc := &Document{Sectors: make(map[string]*Sector)}
	doc.UpsertSector("Sector Sur", "folder-1", false)
	if err := doc.AddAlly("Sector Sur", "beta llc", "folder-2"); err != nil {
		t.Fatalf("AddAlly failed: %v", err)
	}

	doc.UpsertSector("Sector Sur", "folder-new", false)

	sector := doc.Sectors["Sector Sur"]
	if len(sector.Allies) != 0 {
		t.Errorf("reset upsert should drop allies, got %d", len(sector.Allies))
	}
}

func TestAddAllyUnknownSector(t *testing.T) {
	doc := &Document{Sectors: make(map[string]*Sector)}
	if err := doc.AddAlly("nope", "ally", "id"); err == nil {
		t.Fatal("AddAlly on unknown sector should fail")
	}
}

func TestAddAllyExistingKeepsScreenshots(t *testing.T) {
	doc := &Document{Sectors: make(map[string]*Sector)}
	doc.UpsertSector("s", "f", false)
	if err := doc.AddAlly("s", "a", "f1"); err != nil {
		t.Fatal(err)
	}
	if err := doc.RecordScreenshot("s", "a", Screenshot{Name: "x.png"}); err != nil {
		t.Fatal(err)
	}

	if err := doc.AddAlly("s", "a", "f2"); err != nil {
		t.Fatal(err)
	}

	ally := doc.Sectors["s"].Allies["a"]
	if ally.FolderID != "f2" {
		t.Errorf("folder id = %q, want f2", ally.FolderID)
	}
	if len(ally.Screenshots) != 1 {
		t.Errorf("re-adding an ally should keep screenshots, got %d", len(ally.Screenshots))
	}
}
