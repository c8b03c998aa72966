package ports

import (
	"context"

	"github.com/billio/invoicing-api/internal/core/domain"
)

// ChatCompleter abstracts the external chat-completion API.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

// RelevantContext is the result of context retrieval: the matched entities
// plus the prose summary handed to the chat composer. The language model
// consumes the summary, not the structured data.
type RelevantContext struct {
	Customers []domain.Customer
	Invoices  []domain.Invoice
	Summary   string
}

// ContextRetriever builds a relevance-filtered summary of customers and
// invoices matching a free-text query.
type ContextRetriever interface {
	SearchCustomers(ctx context.Context, ownerID, query string) ([]domain.Customer, error)
	SearchInvoices(ctx context.Context, ownerID, query string) ([]domain.Invoice, error)
	Retrieve(ctx context.Context, ownerID, query string) (*RelevantContext, error)
}

// ChatService assembles the message list, calls the completion API and
// returns the assistant reply.
type ChatService interface {
	SendMessage(ctx context.Context, ownerID string, conversation []domain.ChatMessage) (string, error)
}
