package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/billio/invoicing-api/internal/core/domain"
	"github.com/billio/invoicing-api/internal/core/ports"
)

// capabilityPrompt is the static system message describing what the
// assistant can do with the business data it is given.
const capabilityPrompt = "You are an assistant inside an invoice management " +
	"application. You answer questions about the user's customers and " +
	"invoices using only the business data provided in the conversation. " +
	"Amounts are in the customer's currency; invoices are either paid or " +
	"unpaid. If the provided data does not contain the answer, say so " +
	"instead of guessing."

const contextPreamble = "Here is the current business data relevant to the user's question:\n\n"

// ChatComposer assembles the message list for the completion API: static
// capability description, retrieved business context, then the user turns.
// Each turn gets a freshly retrieved context block so the model always sees
// current data.
type ChatComposer struct {
	retriever ports.ContextRetriever
	completer ports.ChatCompleter
	log       zerolog.Logger

	mu      sync.RWMutex
	lastErr error
}

func NewChatComposer(retriever ports.ContextRetriever, completer ports.ChatCompleter, log zerolog.Logger) *ChatComposer {
	return &ChatComposer{retriever: retriever, completer: completer, log: log}
}

// SendMessage validates the conversation, injects context and returns the
// assistant reply. The last message must be from the user; otherwise the
// call fails before any network request. Errors are recorded and returned.
func (c *ChatComposer) SendMessage(ctx context.Context, ownerID string, conversation []domain.ChatMessage) (string, error) {
	if len(conversation) == 0 || conversation[len(conversation)-1].Role != domain.ChatRoleUser {
		return "", domain.ErrLastMessageNotUser
	}

	latest := conversation[len(conversation)-1]
	relevant, err := c.retriever.Retrieve(ctx, ownerID, latest.Content)
	if err != nil {
		c.recordErr(err)
		return "", err
	}

	contextMsg := domain.ChatMessage{
		Role:    domain.ChatRoleSystem,
		Content: contextPreamble + relevant.Summary,
	}

	var messages []domain.ChatMessage
	if hasSystemMessage(conversation) {
		// Insert the fresh context immediately before the latest user turn.
		messages = make([]domain.ChatMessage, 0, len(conversation)+1)
		messages = append(messages, conversation[:len(conversation)-1]...)
		messages = append(messages, contextMsg, latest)
	} else {
		messages = make([]domain.ChatMessage, 0, len(conversation)+2)
		messages = append(messages,
			domain.ChatMessage{Role: domain.ChatRoleSystem, Content: capabilityPrompt},
			contextMsg,
		)
		messages = append(messages, conversation...)
	}

	reply, err := c.completer.Complete(ctx, messages)
	if err != nil {
		c.recordErr(err)
		c.log.Error().Err(err).Str("owner_id", ownerID).Msg("chat completion failed")
		return "", err
	}

	c.recordErr(nil)
	return reply, nil
}

// Err returns the error recorded by the most recent SendMessage, nil after
// a success.
func (c *ChatComposer) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

func (c *ChatComposer) recordErr(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

func hasSystemMessage(conversation []domain.ChatMessage) bool {
	for _, m := range conversation {
		if m.Role == domain.ChatRoleSystem {
			return true
		}
	}
	return false
}
