package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spesebot/internal/core"
	applog "spesebot/internal/log"
	"spesebot/internal/pending"
	"spesebot/internal/sheets"
)

// ErrSinkFailure wraps a failed append of a finalized record.
var ErrSinkFailure = errors.New("record sink failure")

// Controller correlates a parsed text message with the category selected later
// by the same user. Entries are kept per user in a pending.Store; at most one
// entry per user exists and a new message replaces an unclaimed one.
type Controller struct {
	messenger Messenger
	records   sheets.RecordWriter
	pending   *pending.Store
	now       func() time.Time
}

type ControllerOption func(*Controller)

// WithClock overrides the clock used to timestamp records.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.now = now
	}
}

// WithStore shares an existing pending store, e.g. to report its size elsewhere.
func WithStore(s *pending.Store) ControllerOption {
	return func(c *Controller) {
		c.pending = s
	}
}

func NewController(m Messenger, records sheets.RecordWriter, opts ...ControllerOption) *Controller {
	c := &Controller{
		messenger: m,
		records:   records,
		pending:   pending.New(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pending returns the number of entries waiting for a category.
func (c *Controller) Pending() int {
	return c.pending.Len()
}

// HandleText parses msg and, if it holds an amount, stores it as the sender's
// pending entry and asks for a category. Otherwise a usage hint is sent.
func (c *Controller) HandleText(ctx context.Context, msg TextMessage) error {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentBot).With(applog.FieldUserID, msg.SenderID)

	entry, err := core.ParseExpense(msg.Text)
	if errors.Is(err, core.ErrNotAnExpense) {
		logger.DebugContext(ctx, "Message is not an expense", applog.FieldOperation, applog.OpParse)
		return c.messenger.SendReply(ctx, msg.ChatID, usageHint, nil)
	}
	if err != nil {
		return fmt.Errorf("parse expense: %w", err)
	}

	if replaced := c.pending.Put(msg.SenderID, entry); replaced {
		logger.DebugContext(ctx, "Replaced unclaimed pending entry", applog.FieldOperation, applog.OpPrompt)
	}
	logger.InfoContext(ctx, "Expense awaiting category",
		applog.NewFields().WithEntry(entry).WithOperation(applog.OpPrompt).ToSlice()...)

	return c.messenger.SendReply(ctx, msg.ChatID, promptText(entry), categoryOptions())
}

// HandleSelection acknowledges the tap, then finalizes the sender's pending
// entry with the selected category and appends it once to the record sink.
//
// The entry is removed before the append, so a replayed selection finds
// nothing and a failed append is not retried. On failure the prompt is
// replaced with a notice and an error wrapping ErrSinkFailure is returned.
func (c *Controller) HandleSelection(ctx context.Context, ev SelectionEvent) error {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentBot).With(applog.FieldUserID, ev.SenderID)

	if err := c.messenger.Acknowledge(ctx, ev.ID); err != nil {
		logger.WarnContext(ctx, "Failed to acknowledge selection",
			applog.NewFields().WithError(err).WithOperation(applog.OpAck).ToSlice()...)
	}

	category, err := core.ParseCategory(ev.Value)
	if err != nil {
		logger.WarnContext(ctx, "Rejected selection outside the category set",
			applog.FieldCategory, ev.Value, applog.FieldOperation, applog.OpSelect)
		return c.messenger.EditMessage(ctx, ev.Message, unknownCategoryText(ev.Value))
	}

	entry, ok := c.pending.Take(ev.SenderID)
	if !ok {
		logger.InfoContext(ctx, "Selection without pending entry",
			applog.FieldCategory, category.String(), applog.FieldOperation, applog.OpSelect)
		return c.messenger.EditMessage(ctx, ev.Message, noPendingEntry)
	}

	record := core.NewExpenseRecord(entry, category, c.now())
	fields := applog.NewFields().WithRecord(record).WithOperation(applog.OpAppend)

	ref, err := c.records.Append(ctx, record)
	if err != nil {
		logger.LogError(ctx, "Failed to append expense record", err, applog.OpAppend, fields)
		if editErr := c.messenger.EditMessage(ctx, ev.Message, saveFailedText(record)); editErr != nil {
			logger.WarnContext(ctx, "Failed to report append failure",
				applog.NewFields().WithError(editErr).ToSlice()...)
		}
		return fmt.Errorf("%w: %w", ErrSinkFailure, err)
	}

	fields[applog.FieldRowRef] = ref
	logger.InfoContext(ctx, "Expense record saved", fields.ToSlice()...)

	return c.messenger.EditMessage(ctx, ev.Message, savedText(record))
}
