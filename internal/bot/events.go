// Package bot implements the two-step expense conversation: a free-text
// message becomes a pending entry and a category prompt, and the category
// chosen on that prompt turns the entry into an appended record.
package bot

import "context"

type (
	// MessageRef identifies a message already sent to a chat.
	MessageRef struct {
		ChatID    int64
		MessageID int
	}

	// TextMessage is a plain text message sent by a user.
	TextMessage struct {
		SenderID  int64
		ChatID    int64
		MessageID int
		Text      string
	}

	// SelectionEvent is a tap on one of the buttons of a prompt.
	SelectionEvent struct {
		// ID is the transport's identifier used to acknowledge the tap.
		ID       string
		SenderID int64
		Value    string
		Message  MessageRef
	}

	// Option is one selectable button of a reply.
	Option struct {
		Label string
		Value string
	}
)

// Messenger sends replies through the chat transport.
type Messenger interface {
	SendReply(ctx context.Context, chatID int64, text string, options []Option) error
	EditMessage(ctx context.Context, ref MessageRef, text string) error
	Acknowledge(ctx context.Context, selectionID string) error
}
