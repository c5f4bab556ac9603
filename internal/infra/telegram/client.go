// internal/infra/telegram/client.go
package telegram

import (
	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the messaging.Client interface using the
// gopkg.in/telebot.v3 library. All announcement pages go to the one chat the
// bot was configured with.
type TelebotAdapter struct {
	bot    *telebot.Bot
	chatID int64
}

func NewTelebotAdapter(b *telebot.Bot, chatID int64) *TelebotAdapter {
	return &TelebotAdapter{bot: b, chatID: chatID}
}

// SendPage delivers one rendered announcement page to the configured chat.
func (tba *TelebotAdapter) SendPage(text string) error {
	recipient := &telebot.Chat{ID: tba.chatID}
	_, err := tba.bot.Send(recipient, text, &telebot.SendOptions{ParseMode: telebot.ModeHTML})
	return err
}
