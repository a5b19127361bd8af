package promptbuild

import (
	"fmt"
	"strings"

	"ragchat/internal/models"
	"ragchat/internal/provider"
)

const (
	simpleChatSystem = "You are an assistant that answers users' questions."

	documentChatSystem = "You are a helpful assistant. Use the provided context from the uploaded document to answer the question. If the answer is not in the context, say so."
)

// Assembler builds the message sequence sent to a provider: system
// instructions, a labeled context block when passages were retrieved, a
// bounded window of recent history, then the question.
type Assembler struct {
	historyWindow int
	budget        int // characters across all message contents
}

func New(historyWindow, budget int) *Assembler {
	return &Assembler{historyWindow: historyWindow, budget: budget}
}

// Assemble is deterministic for identical inputs. When the combined prompt
// would exceed the budget, the oldest history messages are dropped first;
// retrieved context is never dropped in favor of history.
func (a *Assembler) Assemble(question string, passages []models.RetrievedPassage, history []models.ChatMessage) []provider.Message {
	system := simpleChatSystem
	final := question
	if len(passages) > 0 {
		system = documentChatSystem
		final = fmt.Sprintf("Context:\n%s\nQuestion: %s", contextBlock(passages), question)
	}

	window := history
	if a.historyWindow > 0 && len(window) > a.historyWindow {
		window = window[len(window)-a.historyWindow:]
	}

	fixed := len(system) + len(final)
	for len(window) > 0 && fixed+windowSize(window) > a.budget {
		window = window[1:]
	}

	msgs := make([]provider.Message, 0, len(window)+2)
	msgs = append(msgs, provider.Message{Role: models.RoleSystem, Content: system})
	for _, m := range window {
		msgs = append(msgs, provider.Message{Role: m.Role, Content: m.Text})
	}
	return append(msgs, provider.Message{Role: models.RoleUser, Content: final})
}

func contextBlock(passages []models.RetrievedPassage) string {
	var sb strings.Builder
	for i, rp := range passages {
		fmt.Fprintf(&sb, "[%d] (page %d) %s\n\n", i+1, rp.Passage.Page, rp.Passage.Text)
	}
	return sb.String()
}

func windowSize(window []models.ChatMessage) int {
	total := 0
	for _, m := range window {
		total += len(m.Text)
	}
	return total
}
