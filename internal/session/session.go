package session

import (
	"sync"
	"time"

	"ragchat/internal/models"
	"ragchat/internal/vecstore"
)

type State string

const (
	// StateIdle: no document loaded, only the simple-chat path is available.
	StateIdle State = "idle"
	// StateDocumentLoaded: a vector index is populated and retrieval is on.
	StateDocumentLoaded State = "document_loaded"
	// StateQuerying: a retrieval+completion cycle is in flight. Further asks
	// are rejected until the stream finishes or is closed.
	StateQuerying State = "querying"
)

// Session holds one user's chat history, active vector index, and state.
// All mutation goes through the controller handling the session's current
// request; sessions share nothing with each other.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	state        State
	history      []models.ChatMessage
	index        *vecstore.Index
	documentName string
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) DocumentName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentName
}

// History returns a copy of the chat history; callers cannot mutate the
// session through it.
func (s *Session) History() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) append(msgs ...models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, msgs...)
}

// restingState is the state a session returns to when no query is in flight.
func (s *Session) restingState() State {
	if s.index != nil {
		return StateDocumentLoaded
	}
	return StateIdle
}
