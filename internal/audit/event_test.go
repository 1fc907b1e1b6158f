package audit

import (
	"testing"
	"time"
)

func TestComputeEventHash(t *testing.T) {
	event := EvidenceEvent{
		Version:   "1.0",
		EventType: "evidence_capture",
		Timestamp: time.Now(),
		Capture: CaptureInfo{
			RunID:    "run-1",
			Sector:   "Sector Norte",
			Ally:     "acme corp",
			Document: "https://docs.google.com/document/d/abc",
		},
		File: FileInfo{
			Name:        "match_acme_corp_20250101_120000_001.png",
			Checksum:    "sha256:abc123",
			ByteSize:    1234,
			StoragePath: "evidence/Sector Norte/acme corp/match_acme_corp_20250101_120000_001.png",
		},
		Producer: ProducerInfo{
			Name:    "evidence-copier",
			Version: "v0.1.0",
		},
	}

	// First in chain: empty prev_event_hash
	event.SetChainHashes("")

	if event.Chain.EventHash == "" {
		t.Error("EventHash should be computed")
	}
	if len(event.Chain.EventHash) < 7 || event.Chain.EventHash[:7] != "sha256:" {
		t.Errorf("EventHash should start with 'sha256:', got: %s", event.Chain.EventHash)
	}
	if event.Chain.PrevEventHash != "" {
		t.Errorf("PrevEventHash should be empty for first in chain, got: %s", event.Chain.PrevEventHash)
	}
}

func TestHashChainDeterminism(t *testing.T) {
	createEvent := func() EvidenceEvent {
		return EvidenceEvent{
			Version:   "1.0",
			EventType: "evidence_capture",
			Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Capture: CaptureInfo{
				RunID:  "run-2",
				Sector: "Sector Sur",
				Ally:   "beta llc",
			},
			File:     FileInfo{Name: "a.png", Checksum: "sha256:aaa"},
			Producer: ProducerInfo{Name: "test"},
		}
	}

	event1 := createEvent()
	event1.SetChainHashes("prev_hash_123")

	event2 := createEvent()
	event2.SetChainHashes("prev_hash_123")

	if event1.Chain.EventHash != event2.Chain.EventHash {
		t.Errorf("Identical events should produce identical hashes.\n  Event1: %s\n  Event2: %s",
			event1.Chain.EventHash, event2.Chain.EventHash)
	}
}

func TestHashChainDifferentPrevHash(t *testing.T) {
	createEvent := func() EvidenceEvent {
		return EvidenceEvent{
			Version:   "1.0",
			EventType: "evidence_capture",
			Capture:   CaptureInfo{RunID: "run-3", Ally: "gamma sa"},
			File:      FileInfo{Name: "g.png", Checksum: "sha256:xyz"},
		}
	}

	event1 := createEvent()
	event1.SetChainHashes("prev_hash_A")

	event2 := createEvent()
	event2.SetChainHashes("prev_hash_B")

	// Different prev_hash = different event_hash (chain integrity)
	if event1.Chain.EventHash == event2.Chain.EventHash {
		t.Error("Different prev_hash should produce different event_hash")
	}
}

func TestHashChainDifferentContent(t *testing.T) {
	event1 := EvidenceEvent{
		Capture: CaptureInfo{RunID: "run-4", Ally: "acme corp"},
		File:    FileInfo{Name: "a.png", Checksum: "sha256:checksum_A"},
	}
	event1.SetChainHashes("")

	event2 := EvidenceEvent{
		Capture: CaptureInfo{RunID: "run-4", Ally: "acme corp"},
		File:    FileInfo{Name: "a.png", Checksum: "sha256:checksum_B"},
	}
	event2.SetChainHashes("")

	// Different content = different event_hash (tamper evident)
	if event1.Chain.EventHash == event2.Chain.EventHash {
		t.Error("Different content should produce different event_hash")
	}
}

func TestChainKey(t *testing.T) {
	c := CaptureInfo{Sector: "Sector Norte", Ally: "acme corp"}
	if c.ChainKey() != "Sector Norte" {
		t.Errorf("ChainKey() = %s, want Sector Norte", c.ChainKey())
	}

	unsectored := CaptureInfo{Ally: "acme corp"}
	if unsectored.ChainKey() != "_unsectored" {
		t.Errorf("ChainKey() = %s, want _unsectored", unsectored.ChainKey())
	}
}
