package error_notificator

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender — то, что нам нужно от *tgbotapi.BotAPI
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Infra struct {
	bot     sender
	chatIDs []int64
}

func NewInfra(token string, chatIDs []int64) (*Infra, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	log.Printf("[error_notificator] ready: @%s, %d admin chats", bot.Self.UserName, len(chatIDs))
	return &Infra{bot: bot, chatIDs: chatIDs}, nil
}

func (i *Infra) Notify(ctx context.Context, err error, details string) error {
	text := fmt.Sprintf(
		"❗ Ошибка в pdf_tools\n\nОшибка: %v\n\nДетали: %s",
		err,
		details,
	)

	for _, chatID := range i.chatIDs {
		if _, sendErr := i.bot.Send(tgbotapi.NewMessage(chatID, text)); sendErr != nil {
			log.Printf("[error_notificator] send fail to %d: %v", chatID, sendErr)
			return sendErr
		}
	}

	return nil
}
