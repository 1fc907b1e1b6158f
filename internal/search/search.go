// Package search runs the evidence capture loop: open the document, wait
// for manual authentication, then for each term highlight it with the
// browser's find bar and screenshot the viewport.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alianza/evidence-copier/internal/browser"
	"github.com/alianza/evidence-copier/internal/logging"
	"github.com/alianza/evidence-copier/internal/metrics"
	"github.com/alianza/evidence-copier/internal/util"
)

// ErrRunActive is returned when a capture run is requested while another
// one holds the run slot. Runs share one browser and one find bar, so at
// most one may be active.
var ErrRunActive = errors.New("a capture run is already active")

// State describes where a run is in its lifecycle.
type State string

const (
	StateIdle           State = "idle"
	StateInitializing   State = "initializing"
	StateAuthenticating State = "authenticating"
	StateSearching      State = "searching"
	StateCompleted      State = "completed"
	StateCancelled      State = "cancelled"
	StateFailed         State = "failed"
)

// ItemStatus describes the outcome of a single search term.
type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemSearching ItemStatus = "searching"
	ItemCompleted ItemStatus = "completed"
	ItemFailed    ItemStatus = "failed"
	ItemCancelled ItemStatus = "cancelled"
)

// Item is the per-term record of a run.
type Item struct {
	Term       string
	Status     ItemStatus
	Screenshot string // local file path, set on completion
	Error      string // error detail, set on failure
	Duration   time.Duration
}

// Task describes one capture run.
type Task struct {
	DocumentURL string
	Terms       []string
	// Kind prefixes screenshot filenames: "search" for plain runs,
	// "match" for comparison-driven runs.
	Kind string
}

// Summary is the aggregate outcome of a run.
type Summary struct {
	Total      int
	Successful int
	Failed     int
	Cancelled  int
	Duration   time.Duration
	State      State
}

// Result is everything a run produced.
type Result struct {
	RunID   string
	Items   []Item
	Summary Summary
}

// Config configures the capture loop.
type Config struct {
	OutputDir string
	// SearchPause is the settle delay between typing a query and taking
	// the screenshot.
	SearchPause time.Duration
	// AuthWait is the fixed pause for manual login after navigation.
	AuthWait time.Duration
}

// Orchestrator owns the run slot and drives the browser through capture
// runs. Methods are safe for concurrent use; at most one run is active.
type Orchestrator struct {
	driver browser.Driver
	cfg    Config
	log    *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	state   State
	seq     int
}

// New creates an orchestrator.
func New(driver browser.Driver, cfg Config, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		driver: driver,
		cfg:    cfg,
		log:    log,
		state:  StateIdle,
	}
}

// State reports the current run state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Cancel stops the active run, if any. Already-captured evidence is kept;
// remaining terms are marked cancelled.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
	}
}

// acquire claims the run slot and derives the run's cancellable context.
func (o *Orchestrator) acquire(ctx context.Context) (context.Context, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return nil, ErrRunActive
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.running = true
	o.cancel = cancel
	o.seq = 0
	if m := metrics.Get(); m != nil {
		m.SetRunActive(true)
	}
	return runCtx, nil
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.running = false
	if m := metrics.Get(); m != nil {
		m.SetRunActive(false)
	}
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	o.log.Info("run state changed", "state", string(s))
}

// Run executes a capture run. Cancellation is not an error: the result
// reports StateCancelled and the error is nil. Initialization failures
// (browser launch, navigation) fail the whole run.
func (o *Orchestrator) Run(ctx context.Context, task Task) (*Result, error) {
	if task.Kind == "" {
		task.Kind = "search"
	}

	runCtx, err := o.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer o.release()

	runID := logging.NewRunID()
	log := logging.RunLogger(runID, task.DocumentURL, len(task.Terms))
	startTime := time.Now()

	result := &Result{RunID: runID, Items: make([]Item, len(task.Terms))}
	for i, term := range task.Terms {
		result.Items[i] = Item{Term: term, Status: ItemPending}
	}

	if err := util.EnsureDir(o.cfg.OutputDir); err != nil {
		o.setState(StateFailed)
		return result, fmt.Errorf("create output dir: %w", err)
	}

	o.setState(StateInitializing)
	log.Info("starting capture run", "kind", task.Kind)

	if err := o.driver.Start(runCtx); err != nil {
		o.setState(StateFailed)
		return result, fmt.Errorf("start browser: %w", err)
	}
	defer o.driver.Close()

	if err := o.driver.Navigate(runCtx, task.DocumentURL); err != nil {
		o.setState(StateFailed)
		return result, fmt.Errorf("open document: %w", err)
	}

	o.setState(StateAuthenticating)
	log.Info("waiting for manual authentication", "wait", o.cfg.AuthWait.String())
	if err := sleepCtx(runCtx, o.cfg.AuthWait); err != nil {
		o.finishCancelled(result, 0, startTime, task.Kind, log)
		return result, nil
	}

	o.setState(StateSearching)
	for i := range result.Items {
		if runCtx.Err() != nil {
			o.finishCancelled(result, i, startTime, task.Kind, log)
			return result, nil
		}

		item := &result.Items[i]
		item.Status = ItemSearching
		itemStart := time.Now()

		path, err := o.captureTerm(runCtx, task.Kind, item.Term)
		item.Duration = time.Since(itemStart)

		switch {
		case err == nil:
			// A capture that made it to disk stays completed even when
			// cancellation lands right after the write; the loop check
			// above ends the run before the next term.
			item.Status = ItemCompleted
			item.Screenshot = path
			log.Info("term captured", "term", item.Term, "screenshot", path)
			if m := metrics.Get(); m != nil {
				m.IncSearchCompleted(task.Kind)
				m.ObserveSearchDuration(task.Kind, item.Duration.Seconds())
			}
		case runCtx.Err() != nil:
			o.finishCancelled(result, i, startTime, task.Kind, log)
			return result, nil
		default:
			// One bad term never aborts the rest of the run.
			item.Status = ItemFailed
			item.Error = err.Error()
			log.Error("term capture failed", "term", item.Term, "error", err)
			if m := metrics.Get(); m != nil {
				m.IncSearchFailed(task.Kind)
			}
		}
	}

	o.setState(StateCompleted)
	result.Summary = Summarize(result.Items, time.Since(startTime), StateCompleted)
	o.logSummary(log, result.Summary, task.Kind)
	return result, nil
}

// captureTerm highlights one term and writes the screenshot to disk.
func (o *Orchestrator) captureTerm(ctx context.Context, kind, term string) (string, error) {
	if err := o.driver.ClearFind(ctx); err != nil {
		return "", fmt.Errorf("clear find bar: %w", err)
	}
	if err := o.driver.FindInPage(ctx, term); err != nil {
		return "", fmt.Errorf("find in page: %w", err)
	}
	if err := sleepCtx(ctx, o.cfg.SearchPause); err != nil {
		return "", err
	}

	data, err := o.driver.Screenshot(ctx)
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	if m := metrics.Get(); m != nil {
		m.ObserveScreenshotBytes(kind, float64(len(data)))
	}

	o.mu.Lock()
	o.seq++
	seq := o.seq
	o.mu.Unlock()

	name := ScreenshotName(kind, term, time.Now(), seq)
	path := filepath.Join(o.cfg.OutputDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write screenshot %s: %w", path, err)
	}
	return path, nil
}

// finishCancelled marks every item from index from onward as cancelled and
// closes out the run.
func (o *Orchestrator) finishCancelled(result *Result, from int, startTime time.Time, kind string, log *slog.Logger) {
	for i := from; i < len(result.Items); i++ {
		if result.Items[i].Status == ItemPending || result.Items[i].Status == ItemSearching {
			result.Items[i].Status = ItemCancelled
			if m := metrics.Get(); m != nil {
				m.IncSearchCancelled(kind)
			}
		}
	}
	o.setState(StateCancelled)
	result.Summary = Summarize(result.Items, time.Since(startTime), StateCancelled)
	o.logSummary(log, result.Summary, kind)
}

func (o *Orchestrator) logSummary(log *slog.Logger, s Summary, kind string) {
	log.Info("capture run finished",
		"kind", kind,
		"state", string(s.State),
		"total", s.Total,
		"successful", s.Successful,
		"failed", s.Failed,
		"cancelled", s.Cancelled,
		"duration", s.Duration.String(),
	)
	if m := metrics.Get(); m != nil {
		m.ObserveRunDuration(kind, s.Duration.Seconds())
	}
}

// Summarize folds per-term outcomes into run totals.
func Summarize(items []Item, duration time.Duration, state State) Summary {
	s := Summary{Total: len(items), Duration: duration, State: state}
	for _, item := range items {
		switch item.Status {
		case ItemCompleted:
			s.Successful++
		case ItemFailed:
			s.Failed++
		case ItemCancelled:
			s.Cancelled++
		}
	}
	return s
}

// sleepCtx pauses for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
