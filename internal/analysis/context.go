package analysis

import (
	"log"

	"menucost/internal/models"
)

// ConversationContext is the capability interface to the conversation
// collaborator. The engines never depend on prior calls; a stateful
// implementation can be swapped in without touching them.
type ConversationContext interface {
	// RecentIngredients returns ingredients mentioned in recent analyses,
	// used to resolve substitution follow-up questions.
	RecentIngredients() []string
	// HasRecentAnalysis reports whether a prior analysis exists to follow
	// up on.
	HasRecentAnalysis() bool
	// RecordExchange logs a completed question/answer exchange.
	RecordExchange(userMessage, response string, query models.StructuredQuery)
	// Clear discards any accumulated conversation state.
	Clear()
}

// StatelessContext is the deployment default: every query is analyzed
// fresh, so all context methods return empty or neutral values.
type StatelessContext struct{}

// NewStatelessContext creates the no-op conversation context
func NewStatelessContext() *StatelessContext {
	log.Println("Conversation context initialized in stateless mode")
	return &StatelessContext{}
}

func (*StatelessContext) RecentIngredients() []string { return nil }

func (*StatelessContext) HasRecentAnalysis() bool { return false }

func (*StatelessContext) RecordExchange(userMessage, response string, query models.StructuredQuery) {
	preview := userMessage
	if len(preview) > 50 {
		preview = preview[:50]
	}
	log.Printf("Query processed: %q -> response generated (%d chars)", preview, len(response))
}

func (*StatelessContext) Clear() {}
