package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alianza/evidence-copier/internal/audit"
	"github.com/alianza/evidence-copier/internal/browser"
	"github.com/alianza/evidence-copier/internal/drive"
	"github.com/alianza/evidence-copier/internal/logging"
	"github.com/alianza/evidence-copier/internal/search"
	"github.com/alianza/evidence-copier/internal/sheets"
	"github.com/alianza/evidence-copier/internal/watcher"
)

// signalContext returns a context cancelled on SIGINT/SIGTERM. A run
// interrupted this way ends as cancelled, keeping evidence captured so far.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func openStore() (drive.Store, error) {
	return drive.NewStore(drive.Config{
		Backend:    cfg.Drive.Backend,
		LocalDir:   cfg.Drive.LocalDir,
		GCSBucket:  cfg.Drive.GCSBucket,
		S3Bucket:   cfg.Drive.S3Bucket,
		S3Endpoint: cfg.Drive.S3Endpoint,
		S3Region:   cfg.Drive.S3Region,
		Prefix:     cfg.Drive.Prefix,
	})
}

// rootFolderID resolves the configured root folder reference, which may be
// a bare id or a folder URL. Empty means the store root.
func rootFolderID() (string, error) {
	if cfg.Drive.RootFolder == "" {
		return "", nil
	}
	return drive.ExtractFolderID(cfg.Drive.RootFolder)
}

// readNames reads the first-column name list from a spreadsheet reference.
func readNames(ctx context.Context, sheetRef, rangeExpr string) ([]string, error) {
	id, err := sheets.ExtractSpreadsheetID(sheetRef)
	if err != nil {
		return nil, err
	}
	reader, err := sheets.NewRangeReader(sheets.ReaderConfig{
		Mode:      cfg.Sheets.Mode,
		ExportURL: cfg.Sheets.ExportURL,
		LocalDir:  cfg.Sheets.LocalDir,
	})
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	names, err := sheets.ReadColumn(ctx, reader, id, rangeExpr)
	if err != nil {
		return nil, fmt.Errorf("read name list: %w", err)
	}
	return names, nil
}

func newOrchestrator(component string) *search.Orchestrator {
	session := browser.NewSession(browser.Config{
		Headless:          cfg.Browser.Headless,
		ViewportWidth:     cfg.Browser.ViewportWidth,
		ViewportHeight:    cfg.Browser.ViewportHeight,
		NavigationTimeout: cfg.Browser.NavigationTimeout(),
	})
	return search.New(session, search.Config{
		OutputDir:   cfg.ScreenshotsDir,
		SearchPause: cfg.Browser.SearchPause(),
		AuthWait:    cfg.Browser.AuthWait(),
	}, logging.Component(component))
}

// startWatcher monitors the screenshot directory for the lifetime of ctx
// when watching is enabled. Watch errors never fail the run.
func startWatcher(ctx context.Context) {
	if !cfg.Watch.Enabled {
		return
	}
	log := logging.Component("watcher")
	w, err := watcher.New(cfg.ScreenshotsDir, log, nil)
	if err != nil {
		log.Warn("watcher disabled", "error", err)
		return
	}
	go func() {
		if err := w.Run(ctx); err != nil {
			log.Warn("watcher exited", "error", err)
		}
	}()
}

func producerInfo() audit.ProducerInfo {
	return audit.ProducerInfo{
		Name:    "evidence-copier",
		Version: Version,
		GitSHA:  GitSHA,
	}
}
