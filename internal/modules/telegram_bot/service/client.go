package service

import (
	"context"
	"fmt"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	evaluator "signal_bot/internal/modules/evaluator/service"
	"signal_bot/internal/modules/ledger"
	stats "signal_bot/internal/modules/stats/service"
)

// CardSource resolves a card id against the latest sweep. Cards from older
// sweeps resolve to nothing, which expires their buttons.
type CardSource interface {
	Card(id string) (models.Signal, bool)
}

// Telegram pushes signal cards with take/skip buttons into one chat and
// serves the query commands. It holds no card state of its own: callbacks
// are resolved through the CardSource, so a card is only actionable while
// the current sweep still carries it.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64

	cards  CardSource
	store  ledger.Store
	agg    *stats.Aggregator
	memory *stats.MemoryRecorder
	eval   *evaluator.Evaluator

	now func() time.Time
}

func NewTelegram(cfg *config.Config, cards CardSource, store ledger.Store, agg *stats.Aggregator, memory *stats.MemoryRecorder, eval *evaluator.Evaluator) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}

	return &Telegram{
		bot:    b,
		chatID: cfg.Telegram.ChatID,
		cards:  cards,
		store:  store,
		agg:    agg,
		memory: memory,
		eval:   eval,
		now:    time.Now,
	}, nil
}

func (t *Telegram) Send(ctx context.Context, msg string) (tgbot.Message, error) {
	return t.bot.Send(tgbot.NewMessage(t.chatID, msg))
}

func (t *Telegram) SendF(ctx context.Context, format string, args ...any) (tgbot.Message, error) {
	return t.Send(ctx, fmt.Sprintf(format, args...))
}

func (t *Telegram) editReplyMarkupRemove(msgID int) error {
	rm := tgbot.InlineKeyboardMarkup{InlineKeyboard: [][]tgbot.InlineKeyboardButton{}}
	edit := tgbot.NewEditMessageReplyMarkup(t.chatID, msgID, rm)
	_, err := t.bot.Request(edit)
	return err
}

func (t *Telegram) editText(msgID int, text string) error {
	edit := tgbot.NewEditMessageText(t.chatID, msgID, text)
	_, err := t.bot.Request(edit)
	return err
}

// Start runs the long-poll loop until the update channel closes.
func (t *Telegram) Start(ctx context.Context) error {
	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)
	for update := range updates {
		t.handleUpdate(ctx, update)
	}
	return nil
}

func (t *Telegram) Stop() {
	t.bot.StopReceivingUpdates()
}
