package session

import (
	"sync"
	"testing"
)

func TestNew_DefaultHyperparameters(t *testing.T) {
	ctx := New()

	if ctx.Params.ChunkSize != 1000 {
		t.Errorf("ChunkSize = %d, want 1000", ctx.Params.ChunkSize)
	}
	if ctx.Params.ChunkOverlap != 200 {
		t.Errorf("ChunkOverlap = %d, want 200", ctx.Params.ChunkOverlap)
	}
	if ctx.Params.RetrieverK != 5 {
		t.Errorf("RetrieverK = %d, want 5", ctx.Params.RetrieverK)
	}
	if ctx.Params.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", ctx.Params.Temperature)
	}
}

func TestContext_StageFlags(t *testing.T) {
	ctx := New()

	if ctx.Uploaded() || ctx.HasSession() || ctx.HasNotes() {
		t.Error("fresh context should have no stage completed")
	}

	ctx.DocumentID = "doc-1"
	if !ctx.Uploaded() {
		t.Error("Uploaded() should be true once DocumentID is set")
	}

	ctx.SessionID = "sess-1"
	if !ctx.HasSession() {
		t.Error("HasSession() should be true once SessionID is set")
	}

	ctx.GeneratedNotes = "# Notes"
	if !ctx.HasNotes() {
		t.Error("HasNotes() should be true once notes are set")
	}
}

func TestTranscript_AppendOrder(t *testing.T) {
	tr := NewTranscript()

	tr.Append(RoleUser, "What is X?")
	tr.Append(RoleAssistant, "X is ...")

	entries := tr.Entries()
	if len(entries) != 2 {
		t.Fatalf("Len = %d, want 2", len(entries))
	}
	if entries[0].Role != RoleUser || entries[0].Text != "What is X?" {
		t.Errorf("first entry = %+v, want user question", entries[0])
	}
	if entries[1].Role != RoleAssistant {
		t.Errorf("second entry role = %q, want assistant", entries[1].Role)
	}
	if entries[1].At.Before(entries[0].At) {
		t.Error("entries should be ordered by submission time")
	}
}

func TestTranscript_EntriesReturnsCopy(t *testing.T) {
	tr := NewTranscript()
	tr.Append(RoleUser, "original")

	entries := tr.Entries()
	entries[0].Text = "mutated"

	if got := tr.Entries()[0].Text; got != "original" {
		t.Errorf("transcript mutated through returned slice: %q", got)
	}
}

func TestTranscript_ConcurrentAppend(t *testing.T) {
	tr := NewTranscript()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Append(RoleUser, "q")
		}()
	}
	wg.Wait()

	if tr.Len() != 50 {
		t.Errorf("Len = %d, want 50", tr.Len())
	}
}
