package stubserver

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Document is one uploaded document held in memory.
type Document struct {
	ID          string
	Username    string
	Title       string
	ContentType string
	Text        string
	CreatedAt   time.Time
}

// Session binds a username and document for generation and chat.
type Session struct {
	ID         string
	Username   string
	DocumentID string
	CreatedAt  time.Time
}

// Selection is a registered notes format for a session, with the
// generation hyperparameters that arrived alongside it.
type Selection struct {
	FormatKey    string
	CustomPrompt string
	ChunkSize    int
	ChunkOverlap int
	RetrieverK   int
	Temperature  float64
}

// Store holds all stub backend state. Safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	documents  map[string]*Document
	sessions   map[string]*Session
	selections map[string]*Selection // keyed by session id
	lastNotes  string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		documents:  make(map[string]*Document),
		sessions:   make(map[string]*Session),
		selections: make(map[string]*Selection),
	}
}

// AddDocument stores a new document and returns its generated id.
func (s *Store) AddDocument(username, title, contentType, text string) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &Document{
		ID:          uuid.NewString(),
		Username:    username,
		Title:       title,
		ContentType: contentType,
		Text:        text,
		CreatedAt:   time.Now(),
	}
	s.documents[doc.ID] = doc
	return doc
}

// Document returns the document with the given id, if present.
func (s *Store) Document(id string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	return doc, ok
}

// DocumentsFor returns all documents uploaded by username, newest last.
func (s *Store) DocumentsFor(username string) []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Document
	for _, doc := range s.documents {
		if doc.Username == username {
			out = append(out, doc)
		}
	}
	return out
}

// AddSession stores a new session and returns it.
func (s *Store) AddSession(username, documentID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{
		ID:         uuid.NewString(),
		Username:   username,
		DocumentID: documentID,
		CreatedAt:  time.Now(),
	}
	s.sessions[sess.ID] = sess
	return sess
}

// Session returns the session with the given id, if present.
func (s *Store) Session(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// SetSelection registers the notes format for a session.
func (s *Store) SetSelection(sessionID string, sel Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections[sessionID] = &sel
}

// Selection returns the registered format for a session, if any.
func (s *Store) Selection(sessionID string) (*Selection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sel, ok := s.selections[sessionID]
	return sel, ok
}

// SetNotes records the last generated notes for the download endpoints.
func (s *Store) SetNotes(notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastNotes = notes
}

// Notes returns the last generated notes.
func (s *Store) Notes() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastNotes
}
