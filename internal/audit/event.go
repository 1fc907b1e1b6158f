// Package audit emits tamper-evident evidence events. Every captured and
// uploaded screenshot produces one event; events for the same sector are
// hash-chained so a removed or altered record breaks the chain.
package audit

import (
	"time"
)

// EvidenceEvent is the wire form of one evidence capture.
type EvidenceEvent struct {
	Version   string    `json:"version"`
	EventType string    `json:"event_type"`
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`

	Capture  CaptureInfo  `json:"capture"`
	File     FileInfo     `json:"file"`
	Producer ProducerInfo `json:"producer"`
	Chain    ChainInfo    `json:"chain"`
}

// CaptureInfo identifies what was captured and where.
type CaptureInfo struct {
	RunID    string `json:"run_id"`
	Sector   string `json:"sector,omitempty"`
	Ally     string `json:"ally"`
	Document string `json:"document"`
}

// FileInfo describes the uploaded screenshot.
type FileInfo struct {
	Name        string `json:"name"`
	Checksum    string `json:"checksum"`
	ByteSize    int64  `json:"byte_size"`
	StoragePath string `json:"storage_path"`
}

// ProducerInfo identifies the software that produced the evidence.
type ProducerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	GitSHA  string `json:"git_sha,omitempty"`
}

// ChainInfo provides hash chaining for a tamper-evident audit log.
type ChainInfo struct {
	PrevEventHash string `json:"prev_event_hash"`
	EventHash     string `json:"event_hash"`
}

// ChainKey returns the unique key for this capture's chain. Events chain
// per sector; sectorless captures share one chain.
func (c CaptureInfo) ChainKey() string {
	if c.Sector == "" {
		return "_unsectored"
	}
	return c.Sector
}

// SetChainHashes links the event to its predecessor and computes its own
// hash.
func (e *EvidenceEvent) SetChainHashes(prevHash string) {
	e.Chain.PrevEventHash = prevHash
	e.Chain.EventHash = ComputeEventHash(e)
}
