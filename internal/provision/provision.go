// Package provision builds the evidence folder hierarchy: one folder per
// sector under a fixed root, one subfolder per ally. Provisioning is
// idempotent, rerunning for an existing sector reuses its folders.
package provision

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alianza/evidence-copier/internal/drive"
)

// Provisioner creates sector and ally folders on a drive store.
type Provisioner struct {
	store drive.Store
	log   *slog.Logger
}

// New creates a provisioner.
func New(store drive.Store, log *slog.Logger) *Provisioner {
	return &Provisioner{store: store, log: log}
}

// Result summarizes a hierarchy provisioning run.
type Result struct {
	SectorFolderID string
	// AllyFolders maps each successfully provisioned ally to its folder id.
	AllyFolders map[string]string
	Created     int
	Existing    int
	// Failed maps each ally that could not be provisioned to the error
	// detail. One bad ally never aborts the rest.
	Failed map[string]string
}

// Resolve finds a child folder by name, creating it when absent. The bool
// reports whether a create happened.
func (p *Provisioner) Resolve(ctx context.Context, parentID, name string) (*drive.Folder, bool, error) {
	folder, err := p.store.FindFolder(ctx, parentID, name)
	if err != nil {
		return nil, false, fmt.Errorf("find folder %q: %w", name, err)
	}
	if folder != nil {
		return folder, false, nil
	}

	folder, err = p.store.CreateFolder(ctx, parentID, name)
	if err != nil {
		return nil, false, fmt.Errorf("create folder %q: %w", name, err)
	}
	return folder, true, nil
}

// CreateHierarchy provisions a sector folder under rootID and an ally
// subfolder per name. Ally failures are isolated and reported in the
// result; only a sector-level failure aborts the run.
func (p *Provisioner) CreateHierarchy(ctx context.Context, rootID, sectorName string, allies []string) (*Result, error) {
	sector, created, err := p.Resolve(ctx, rootID, sectorName)
	if err != nil {
		return nil, fmt.Errorf("provision sector %q: %w", sectorName, err)
	}
	p.log.Info("sector folder ready",
		"sector", sectorName,
		"folder_id", sector.ID,
		"created", created)

	result := &Result{
		SectorFolderID: sector.ID,
		AllyFolders:    make(map[string]string, len(allies)),
		Failed:         make(map[string]string),
	}

	for _, ally := range allies {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		folder, created, err := p.Resolve(ctx, sector.ID, ally)
		if err != nil {
			p.log.Error("ally folder provisioning failed",
				"sector", sectorName,
				"ally", ally,
				"error", err)
			result.Failed[ally] = err.Error()
			continue
		}

		result.AllyFolders[ally] = folder.ID
		if created {
			result.Created++
		} else {
			result.Existing++
		}
	}

	p.log.Info("hierarchy provisioned",
		"sector", sectorName,
		"created", result.Created,
		"existing", result.Existing,
		"failed", len(result.Failed))

	return result, nil
}
