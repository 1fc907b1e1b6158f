package audit

import (
	"context"
	"log"

	"github.com/alianza/evidence-copier/internal/config"
)

// Capture is the simplified event struct used by the search orchestrator.
// It is converted to an EvidenceEvent before emission.
type Capture struct {
	RunID    string
	Sector   string
	Ally     string
	Document string
	FileName string
	Checksum string
	ByteSize int64
	Path     string
	Producer ProducerInfo
}

// Emitter is the interface for evidence event emission.
type Emitter interface {
	EmitCapture(ctx context.Context, c Capture) error
	Close() error
}

// NewEmitter creates an appropriate emitter based on configuration.
func NewEmitter(cfg config.AuditConfig) Emitter {
	if !cfg.Enabled {
		log.Println("[audit] disabled, using no-op emitter")
		return &noopEmitter{}
	}

	if cfg.Endpoint != "" {
		emitter, err := NewHTTPEmitter(cfg)
		if err != nil {
			log.Printf("[audit] failed to create HTTP emitter: %v, falling back to file-only", err)
			return createFileOnlyEmitter(cfg)
		}
		log.Printf("[audit] using HTTP emitter -> %s", cfg.Endpoint)
		return &httpEmitterWrapper{emitter: emitter}
	}

	return createFileOnlyEmitter(cfg)
}

func createFileOnlyEmitter(cfg config.AuditConfig) Emitter {
	emitter, err := NewFileOnlyEmitter(cfg.Dir)
	if err != nil {
		log.Printf("[audit] failed to create file emitter: %v, using no-op", err)
		return &noopEmitter{}
	}
	log.Printf("[audit] using file-only emitter -> %s", cfg.Dir)
	return &fileOnlyEmitterWrapper{emitter: emitter}
}

type httpEmitterWrapper struct {
	emitter *HTTPEmitter
}

func (w *httpEmitterWrapper) EmitCapture(ctx context.Context, c Capture) error {
	evt := convertToEvent(c)
	return w.emitter.Emit(ctx, &evt)
}

func (w *httpEmitterWrapper) Close() error {
	return w.emitter.Close()
}

type fileOnlyEmitterWrapper struct {
	emitter *FileOnlyEmitter
}

func (w *fileOnlyEmitterWrapper) EmitCapture(ctx context.Context, c Capture) error {
	evt := convertToEvent(c)
	return w.emitter.Emit(&evt)
}

func (w *fileOnlyEmitterWrapper) Close() error {
	return w.emitter.Close()
}

func convertToEvent(c Capture) EvidenceEvent {
	return EvidenceEvent{
		Version:   "1.0",
		EventType: "evidence_capture",
		Capture: CaptureInfo{
			RunID:    c.RunID,
			Sector:   c.Sector,
			Ally:     c.Ally,
			Document: c.Document,
		},
		File: FileInfo{
			Name:        c.FileName,
			Checksum:    c.Checksum,
			ByteSize:    c.ByteSize,
			StoragePath: c.Path,
		},
		Producer: c.Producer,
	}
}

// noopEmitter discards all events.
type noopEmitter struct{}

func (n *noopEmitter) EmitCapture(ctx context.Context, c Capture) error { return nil }
func (n *noopEmitter) Close() error                                     { return nil }
