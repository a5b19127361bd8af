package models

import "time"

// Passage is an immutable chunk of an extracted document.
type Passage struct {
	ID          string
	DocumentID  string
	Text        string
	Page        int
	Seq         int
	StartOffset int
	EndOffset   int
}

// RetrievedPassage pairs a passage with its similarity score for a query.
type RetrievedPassage struct {
	Passage Passage
	Score   float32
}

// Document holds the extracted text of one uploaded file, ordered by page.
// Ephemeral: created on upload, discarded with the session.
type Document struct {
	ID    string
	Name  string
	Pages []string
}

// Text returns the whole document as a single string, pages joined by
// newlines.
func (d Document) Text() string {
	switch len(d.Pages) {
	case 0:
		return ""
	case 1:
		return d.Pages[0]
	}
	out := d.Pages[0]
	for _, p := range d.Pages[1:] {
		out += "\n" + p
	}
	return out
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage is one entry in a session's ordered chat history.
type ChatMessage struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
