package service

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

const (
	takePrefix    = "TAKE::"
	skipPrefix    = "SKIP::"
	explainPrefix = "EXPL::"
)

// DeliverCards drains the scanner's card channel until ctx is done.
func (t *Telegram) DeliverCards(ctx context.Context, cards <-chan models.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case card, ok := <-cards:
			if !ok {
				return
			}
			if err := t.deliverCard(ctx, card); err != nil {
				logger.Error("deliver card %s: %v", card.ID, err)
			}
		}
	}
}

func (t *Telegram) deliverCard(ctx context.Context, card models.Signal) error {
	kb := tgbot.NewInlineKeyboardMarkup(
		tgbot.NewInlineKeyboardRow(
			tgbot.NewInlineKeyboardButtonData("✅ Take", takePrefix+card.ID),
			tgbot.NewInlineKeyboardButtonData("❌ Skip", skipPrefix+card.ID),
		),
		tgbot.NewInlineKeyboardRow(
			tgbot.NewInlineKeyboardButtonData("ℹ️ Why", explainPrefix+card.ID),
		),
	)

	msg := tgbot.NewMessage(t.chatID, formatCard(card))
	msg.ReplyMarkup = kb
	_, err := t.bot.Send(msg)
	return err
}

func formatCard(card models.Signal) string {
	var b strings.Builder
	icon := "🟢"
	if card.Direction == models.DirectionShort {
		icon = "🔴"
	}
	fmt.Fprintf(&b, "%s %s %s (%s)\n", icon, card.Symbol, card.Direction, card.Timeframe)
	fmt.Fprintf(&b, "Entry: %v\n", card.Entry)
	fmt.Fprintf(&b, "SL: %v\n", card.StopLoss)
	fmt.Fprintf(&b, "TP1: %v (%s)\n", card.TakeProfit1, card.RiskReward1)
	fmt.Fprintf(&b, "TP2: %v (%s)\n", card.TakeProfit2, card.RiskReward2)
	fmt.Fprintf(&b, "Time: %s (UTC%s)\n", card.LocalTime().Format("2006-01-02 15:04"), card.TZOffset)
	b.WriteString(card.Explanation)
	return b.String()
}

// NotifyClose reports an evaluated outcome back to the chat.
func (t *Telegram) NotifyClose(ctx context.Context, e models.LedgerEntry) {
	icon := "🏆"
	if e.Result == models.ResultLoss {
		icon = "💥"
	}
	if _, err := t.SendF(ctx, "%s %s %s closed %s, %.1f pips", icon, e.Symbol, e.Direction, e.Result, e.Pips); err != nil {
		logger.Error("notify close %s: %v", e.ID, err)
	}
}
