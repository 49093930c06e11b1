package metrics

import (
	"sync"
	"testing"
)

func TestCollector_RecordMethods(t *testing.T) {
	c := NewCollector("MBX001", "fs", "webhook")

	c.RecordSent(3, 300)
	c.RecordSent(1, 10)
	c.RecordRetrieved(2, 64)
	c.IncTracked()
	c.IncTracked()
	c.IncInboxListing()
	c.IncFailure("dependency")
	c.IncFailure("dependency")
	c.IncFailure("validation")
	c.IncArchiveWriteSuccess()
	c.IncArchiveWriteFailure()
	c.IncNotifySuccess()
	c.IncNotifyFailure()
	c.IncSpoolWriteSuccess()
	c.IncSpoolWriteSuccess()
	c.IncSpoolWriteFailure()

	s := c.Snapshot()

	checks := []struct {
		name string
		got  int64
		want int64
	}{
		{"MessagesSent", s.MessagesSent, 2},
		{"ChunksSent", s.ChunksSent, 4},
		{"BytesSent", s.BytesSent, 310},
		{"MessagesRetrieved", s.MessagesRetrieved, 1},
		{"ChunksRetrieved", s.ChunksRetrieved, 2},
		{"BytesRetrieved", s.BytesRetrieved, 64},
		{"MessagesTracked", s.MessagesTracked, 2},
		{"InboxListings", s.InboxListings, 1},
		{"Failures", s.Failures, 3},
		{"FailuresByKind[dependency]", s.FailuresByKind["dependency"], 2},
		{"FailuresByKind[validation]", s.FailuresByKind["validation"], 1},
		{"ArchiveWriteSuccess", s.ArchiveWriteSuccess, 1},
		{"ArchiveWriteFailure", s.ArchiveWriteFailure, 1},
		{"NotifySuccess", s.NotifySuccess, 1},
		{"NotifyFailure", s.NotifyFailure, 1},
		{"SpoolWriteSuccess", s.SpoolWriteSuccess, 2},
		{"SpoolWriteFailure", s.SpoolWriteFailure, 1},
	}
	for _, chk := range checks {
		if chk.got != chk.want {
			t.Errorf("%s = %d, want %d", chk.name, chk.got, chk.want)
		}
	}
}

func TestCollector_Dimensions(t *testing.T) {
	s := NewCollector("MBX042", "s3", "redis").Snapshot()

	if s.Mailbox != "MBX042" {
		t.Errorf("Mailbox = %q, want %q", s.Mailbox, "MBX042")
	}
	if s.StorageBackend != "s3" {
		t.Errorf("StorageBackend = %q, want %q", s.StorageBackend, "s3")
	}
	if s.Adapter != "redis" {
		t.Errorf("Adapter = %q, want %q", s.Adapter, "redis")
	}
}

func TestCollector_SnapshotImmutability(t *testing.T) {
	c := NewCollector("MBX001", "", "")
	c.RecordSent(1, 1)
	c.IncFailure("service")

	s1 := c.Snapshot()

	c.RecordSent(1, 1)
	c.IncFailure("service")
	s1.FailuresByKind["injected"] = 1

	if s1.MessagesSent != 1 {
		t.Errorf("s1.MessagesSent = %d, want 1 (snapshot should be frozen)", s1.MessagesSent)
	}
	if s1.FailuresByKind["service"] != 1 {
		t.Errorf("s1.FailuresByKind[service] = %d, want 1", s1.FailuresByKind["service"])
	}

	s2 := c.Snapshot()
	if s2.MessagesSent != 2 || s2.FailuresByKind["service"] != 2 {
		t.Errorf("s2 = %+v", s2)
	}
	if _, exists := s2.FailuresByKind["injected"]; exists {
		t.Error("collector should be isolated from snapshot mutation")
	}
}

func TestCollector_NilReceiverSafety(t *testing.T) {
	var c *Collector

	// None of these should panic
	c.RecordSent(1, 1)
	c.RecordRetrieved(1, 1)
	c.IncTracked()
	c.IncInboxListing()
	c.IncFailure("dependency")
	c.IncArchiveWriteSuccess()
	c.IncArchiveWriteFailure()
	c.IncNotifySuccess()
	c.IncNotifyFailure()
	c.IncSpoolWriteSuccess()
	c.IncSpoolWriteFailure()

	s := c.Snapshot()
	if s.MessagesSent != 0 {
		t.Errorf("nil collector snapshot MessagesSent = %d, want 0", s.MessagesSent)
	}
	if s.FailuresByKind != nil {
		t.Errorf("nil collector snapshot FailuresByKind should be nil, got %v", s.FailuresByKind)
	}
}

func TestCollector_ConcurrentAccess(t *testing.T) {
	c := NewCollector("MBX001", "fs", "")
	const goroutines = 10
	const iterations = 1000

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for range goroutines {
		go func() {
			defer wg.Done()
			for range iterations {
				c.RecordSent(2, 10)
				c.IncFailure("dependency")
			}
		}()
	}

	wg.Wait()

	s := c.Snapshot()
	want := int64(goroutines * iterations)

	if s.MessagesSent != want {
		t.Errorf("MessagesSent = %d, want %d", s.MessagesSent, want)
	}
	if s.ChunksSent != 2*want {
		t.Errorf("ChunksSent = %d, want %d", s.ChunksSent, 2*want)
	}
	if s.FailuresByKind["dependency"] != want {
		t.Errorf("FailuresByKind[dependency] = %d, want %d", s.FailuresByKind["dependency"], want)
	}
}

func TestCollector_ZeroValueSnapshot(t *testing.T) {
	s := NewCollector("MBX001", "", "").Snapshot()

	if s.MessagesSent != 0 || s.MessagesRetrieved != 0 || s.MessagesTracked != 0 || s.InboxListings != 0 {
		t.Error("fresh collector should have zero operation counters")
	}
	if s.ChunksSent != 0 || s.ChunksRetrieved != 0 || s.BytesSent != 0 || s.BytesRetrieved != 0 {
		t.Error("fresh collector should have zero volume counters")
	}
	if len(s.FailuresByKind) != 0 {
		t.Errorf("fresh collector FailuresByKind should be empty, got %v", s.FailuresByKind)
	}
}
