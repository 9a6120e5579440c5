package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"spesebot/internal/bot"
)

// textMessageFrom accepts plain text messages; commands and non-text messages are ignored.
func textMessageFrom(u tgbotapi.Update) (bot.TextMessage, bool) {
	m := u.Message
	if m == nil || m.From == nil || m.Chat == nil || m.Text == "" || m.IsCommand() {
		return bot.TextMessage{}, false
	}
	return bot.TextMessage{
		SenderID:  m.From.ID,
		ChatID:    m.Chat.ID,
		MessageID: m.MessageID,
		Text:      m.Text,
	}, true
}

func selectionFrom(u tgbotapi.Update) (bot.SelectionEvent, bool) {
	q := u.CallbackQuery
	if q == nil || q.From == nil {
		return bot.SelectionEvent{}, false
	}
	ev := bot.SelectionEvent{
		ID:       q.ID,
		SenderID: q.From.ID,
		Value:    q.Data,
	}
	if q.Message != nil && q.Message.Chat != nil {
		ev.Message = bot.MessageRef{ChatID: q.Message.Chat.ID, MessageID: q.Message.MessageID}
	}
	return ev, true
}

func senderOf(u tgbotapi.Update) (int64, bool) {
	switch {
	case u.Message != nil && u.Message.From != nil:
		return u.Message.From.ID, true
	case u.CallbackQuery != nil && u.CallbackQuery.From != nil:
		return u.CallbackQuery.From.ID, true
	default:
		return 0, false
	}
}

// keyboard lays out one button per row.
func keyboard(options []bot.Option) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, len(options))
	for i, o := range options {
		rows[i] = tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(o.Label, o.Value))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
