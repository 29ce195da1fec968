// Package session holds the client-side session state for lectern.
//
// Responsibilities: the Context record shared by all stages, and the
// in-memory chat Transcript. Nothing here is persisted; state lives for
// the duration of the process.
package session

import (
	"sync"
	"time"
)

// Default generation hyperparameters. These match the backend pipeline
// defaults and apply until the user touches the corresponding knob.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultRetrieverK   = 5
	DefaultTemperature  = 0.7
)

// Hyperparameters are the generation-tuning scalars forwarded to the
// backend's retrieval/generation pipeline. Each knob is independent;
// there is no cross-field validation beyond per-field numeric ranges.
type Hyperparameters struct {
	ChunkSize    int
	ChunkOverlap int
	RetrieverK   int
	Temperature  float64
}

// DefaultHyperparameters returns the default knob values.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		RetrieverK:   DefaultRetrieverK,
		Temperature:  DefaultTemperature,
	}
}

// Context is the single session record shared by all stages.
//
// Field invariants (enforced by notes.Service, which only writes on
// stage success):
//   - DocumentID is set iff upload completed successfully.
//   - SessionID is set iff session creation or adoption completed.
//   - GeneratedNotes is non-empty only after a successful generation.
//
// The zero value is not useful - use New() to get default hyperparameters.
type Context struct {
	// Username is set once at upload and immutable afterward.
	Username string

	// DocumentID is the opaque identifier returned by the backend
	// after upload.
	DocumentID string

	// SessionID is returned by session creation, or supplied directly
	// by the user when resuming an existing session.
	SessionID string

	// SelectedFile is the path of the file chosen for upload. Cleared
	// once the upload succeeds.
	SelectedFile string

	// GeneratedNotes holds the last successfully generated note body.
	// Overwritten on each new generation, never on failure.
	GeneratedNotes string

	// Params are the generation hyperparameters.
	Params Hyperparameters
}

// New creates a session context with default hyperparameters.
func New() *Context {
	return &Context{Params: DefaultHyperparameters()}
}

// Uploaded reports whether the upload stage has completed.
func (c *Context) Uploaded() bool { return c.DocumentID != "" }

// HasSession reports whether a session id is available.
func (c *Context) HasSession() bool { return c.SessionID != "" }

// HasNotes reports whether generated notes are available for download.
func (c *Context) HasNotes() bool { return c.GeneratedNotes != "" }

// Transcript roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Entry is a single transcript line.
type Entry struct {
	Role string // RoleUser | RoleAssistant
	Text string
	At   time.Time
}

// Transcript is the append-only chat record, ordered by submission time
// and held only in memory. Append-only is an invariant: entries are never
// removed or rolled back, even when the backing call fails.
//
// The zero value is NOT useful - use NewTranscript() to create instances.
type Transcript struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{entries: make([]Entry, 0)}
}

// Append adds an entry with the given role, stamped with the current time.
func (t *Transcript) Append(role, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, Entry{Role: role, Text: text, At: time.Now()})
}

// Entries returns a copy of all entries for thread-safe access.
func (t *Transcript) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	result := make([]Entry, len(t.entries))
	copy(result, t.entries)
	return result
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
