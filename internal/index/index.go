// Package index persists the sector registry: which sectors exist, which
// drive folder each one maps to, which allies belong to it, and what
// evidence has been captured for each ally.
//
// The whole registry is one JSON document rewritten wholesale on every
// mutation. Volumes are small (tens of sectors) and a single document keeps
// recovery trivial.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Document is the full sector registry.
type Document struct {
	Sectors   map[string]*Sector `json:"sectors"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Sector maps a sector to its drive folder and its allies.
type Sector struct {
	FolderID     string           `json:"folder_id"`
	ParentFolder string           `json:"parent_folder,omitempty"`
	Allies       map[string]*Ally `json:"allies"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Ally maps an ally to its subfolder and captured evidence.
type Ally struct {
	FolderID    string       `json:"folder_id"`
	Screenshots []Screenshot `json:"screenshots,omitempty"`
}

// Screenshot records one uploaded piece of evidence.
type Screenshot struct {
	Name       string    `json:"name"`
	FileID     string    `json:"file_id"`
	ViewURL    string    `json:"view_url,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}

// Store persists the registry document to a single JSON file.
type Store struct {
	path string
}

// NewStore creates a store writing to path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the registry. A missing file yields an empty document; a
// corrupt file is an error so state damage never goes unnoticed.
func (s *Store) Load(ctx context.Context) (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return newDocument(), nil
		}
		return nil, fmt.Errorf("read sector index %s: %w", s.path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sector index %s: %w", s.path, err)
	}
	if doc.Sectors == nil {
		doc.Sectors = make(map[string]*Sector)
	}
	return &doc, nil
}

// Save persists the registry atomically using temp file + rename.
func (s *Store) Save(ctx context.Context, doc *Document) error {
	doc.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sector index: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("write index temp file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("rename index file: %w", err)
	}

	return nil
}

func newDocument() *Document {
	return &Document{Sectors: make(map[string]*Sector)}
}

// UpsertSector registers a sector folder. With merge, an existing sector
// keeps its allies and only the folder id is refreshed; without it the
// sector's ally set is reset.
func (d *Document) UpsertSector(name, folderID string, merge bool) *Sector {
	existing, ok := d.Sectors[name]
	if ok && merge {
		existing.FolderID = folderID
		existing.UpdatedAt = time.Now().UTC()
		return existing
	}

	sector := &Sector{
		FolderID:  folderID,
		Allies:    make(map[string]*Ally),
		UpdatedAt: time.Now().UTC(),
	}
	d.Sectors[name] = sector
	return sector
}

// AddAlly registers an ally subfolder under a sector. An existing ally
// keeps its screenshots; only the folder id is refreshed.
func (d *Document) AddAlly(sectorName, allyName, folderID string) error {
	sector, ok := d.Sectors[sectorName]
	if ok {
		if existing, found := sector.Allies[allyName]; found {
			existing.FolderID = folderID
			sector.UpdatedAt = time.Now().UTC()
			return nil
		}
		sector.Allies[allyName] = &Ally{FolderID: folderID}
		sector.UpdatedAt = time.Now().UTC()
		return nil
	}
	return fmt.Errorf("unknown sector %q", sectorName)
}

// RecordScreenshot appends captured evidence to an ally.
func (d *Document) RecordScreenshot(sectorName, allyName string, shot Screenshot) error {
	sector, ok := d.Sectors[sectorName]
	if !ok {
		return fmt.Errorf("unknown sector %q", sectorName)
	}
	ally, ok := sector.Allies[allyName]
	if !ok {
		return fmt.Errorf("unknown ally %q in sector %q", allyName, sectorName)
	}
	ally.Screenshots = append(ally.Screenshots, shot)
	sector.UpdatedAt = time.Now().UTC()
	return nil
}

// SectorNames returns the registered sector names, unordered.
func (d *Document) SectorNames() []string {
	names := make([]string, 0, len(d.Sectors))
	for name := range d.Sectors {
		names = append(names, name)
	}
	return names
}
