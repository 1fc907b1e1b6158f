package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alianza/evidence-copier/internal/audit"
	"github.com/alianza/evidence-copier/internal/drive"
	"github.com/alianza/evidence-copier/internal/index"
	"github.com/alianza/evidence-copier/internal/metrics"
)

// MatchTarget is one matched ally and its provisioned evidence folder.
type MatchTarget struct {
	Ally     string
	FolderID string
}

// MatchTask describes a comparison-driven capture run: every matched ally
// is captured and its evidence archived to the ally's folder.
type MatchTask struct {
	DocumentURL string
	Sector      string
	Targets     []MatchTarget
}

// Sinks are the archival destinations for match evidence.
type Sinks struct {
	Store    drive.Store
	Index    *index.Store
	Audit    audit.Emitter
	Backend  string // drive backend name, used for metrics labels
	Producer audit.ProducerInfo
}

// RunMatches captures evidence for every matched ally and archives it:
// upload to the ally's folder, record in the sector index, emit an audit
// event. Archival failures are isolated per ally, the capture itself
// stays on disk either way.
func (o *Orchestrator) RunMatches(ctx context.Context, task MatchTask, sinks Sinks) (*Result, error) {
	terms := make([]string, len(task.Targets))
	folders := make(map[string]MatchTarget, len(task.Targets))
	for i, target := range task.Targets {
		terms[i] = target.Ally
		folders[target.Ally] = target
	}

	result, err := o.Run(ctx, Task{
		DocumentURL: task.DocumentURL,
		Terms:       terms,
		Kind:        "match",
	})
	if err != nil {
		return result, err
	}

	if sinks.Store == nil {
		return result, nil
	}

	var doc *index.Document
	if sinks.Index != nil {
		doc, err = sinks.Index.Load(ctx)
		if err != nil {
			return result, fmt.Errorf("load sector index: %w", err)
		}
	}

	archived := 0
	for i := range result.Items {
		item := &result.Items[i]
		if item.Status != ItemCompleted {
			continue
		}

		target := folders[item.Term]
		if err := o.archiveMatch(ctx, task, result.RunID, *item, target, sinks, doc); err != nil {
			item.Status = ItemFailed
			item.Error = err.Error()
			o.log.Error("evidence archival failed",
				"sector", task.Sector,
				"ally", item.Term,
				"error", err)
			if m := metrics.Get(); m != nil {
				m.IncUploadFailed(sinks.Backend)
			}
			continue
		}
		archived++
		if m := metrics.Get(); m != nil {
			m.IncUploadCompleted(sinks.Backend)
		}
	}

	if doc != nil && archived > 0 {
		if err := sinks.Index.Save(ctx, doc); err != nil {
			return result, fmt.Errorf("save sector index: %w", err)
		}
	}

	// Archival failures change per-item outcomes, recount.
	result.Summary = Summarize(result.Items, result.Summary.Duration, result.Summary.State)

	o.log.Info("match evidence archived",
		"sector", task.Sector,
		"archived", archived,
		"failed", result.Summary.Failed)
	return result, nil
}

// archiveMatch uploads one screenshot and records it.
func (o *Orchestrator) archiveMatch(ctx context.Context, task MatchTask, runID string, item Item, target MatchTarget, sinks Sinks, doc *index.Document) error {
	data, err := os.ReadFile(item.Screenshot)
	if err != nil {
		return fmt.Errorf("read screenshot: %w", err)
	}

	name := filepath.Base(item.Screenshot)
	uploadStart := time.Now()
	file, err := sinks.Store.UploadFile(ctx, target.FolderID, name, data)
	if err != nil {
		return fmt.Errorf("upload to folder %s: %w", target.FolderID, err)
	}
	if m := metrics.Get(); m != nil {
		m.ObserveUploadDuration(sinks.Backend, time.Since(uploadStart).Seconds())
	}

	if doc != nil && task.Sector != "" {
		shot := index.Screenshot{
			Name:       name,
			FileID:     file.ID,
			ViewURL:    file.ViewURL,
			CapturedAt: time.Now().UTC(),
		}
		if err := doc.RecordScreenshot(task.Sector, item.Term, shot); err != nil {
			o.log.Warn("screenshot not recorded in index", "error", err)
		}
	}

	if sinks.Audit != nil {
		sum := sha256.Sum256(data)
		capture := audit.Capture{
			RunID:    runID,
			Sector:   task.Sector,
			Ally:     item.Term,
			Document: task.DocumentURL,
			FileName: name,
			Checksum: "sha256:" + hex.EncodeToString(sum[:]),
			ByteSize: int64(len(data)),
			Path:     file.ViewURL,
			Producer: sinks.Producer,
		}
		if err := sinks.Audit.EmitCapture(ctx, capture); err != nil {
			// Audit is best effort; the evidence itself is archived.
			o.log.Warn("audit emission failed", "error", err)
			if m := metrics.Get(); m != nil {
				m.IncAuditErrors("emit")
			}
		}
	}

	return nil
}
