package service

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_bot/internal/models"
	signals "signal_bot/internal/modules/signals/service"
	"signal_bot/pkg/logger"
)

func (t *Telegram) handleUpdate(ctx context.Context, update tgbot.Update) {
	if msg := update.Message; msg != nil {
		if msg.Chat.ID != t.chatID {
			return
		}
		if msg.IsCommand() {
			t.handleCommand(ctx, msg.Command())
		}
		return
	}

	if cb := update.CallbackQuery; cb != nil {
		if cb.Message == nil || cb.Message.Chat == nil || cb.Message.Chat.ID != t.chatID {
			return
		}
		t.handleCallback(ctx, cb)
		return
	}
}

func (t *Telegram) handleCommand(ctx context.Context, cmd string) {
	switch cmd {
	case "start":
		_, _ = t.Send(ctx, "👋 Signal bot.\n\n"+
			"/stats — results over the trailing window\n"+
			"/history — recent taken signals\n"+
			"/memory — long-term trade memory\n"+
			"/eval — evaluate open signals now")
	case "stats":
		t.handleStats(ctx)
	case "history":
		t.handleHistory(ctx)
	case "memory":
		_, _ = t.Send(ctx, t.memory.Summarize())
	case "eval":
		t.handleEval(ctx)
	default:
		// unknown commands are ignored
	}
}

func (t *Telegram) handleStats(ctx context.Context) {
	sum, err := t.agg.Recent(ctx)
	if err != nil {
		logger.Error("stats: %v", err)
		_, _ = t.Send(ctx, "⚠️ Could not read the ledger.")
		return
	}
	_, _ = t.SendF(ctx, "📊 Last 48h: %d signals\n🏆 Wins: %d\n💥 Losses: %d\n⏳ Open: %d",
		sum.Total(), sum.Wins, sum.Losses, sum.Open)
}

func (t *Telegram) handleHistory(ctx context.Context) {
	entries, err := t.store.Load(ctx)
	if err != nil {
		logger.Error("history: %v", err)
		_, _ = t.Send(ctx, "⚠️ Could not read the ledger.")
		return
	}
	if len(entries) == 0 {
		_, _ = t.Send(ctx, "📭 No taken signals on record.")
		return
	}

	const maxRows = 10
	if len(entries) > maxRows {
		entries = entries[len(entries)-maxRows:]
	}
	var b strings.Builder
	b.WriteString("🗂 Recent signals:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "• %s %s %s %s", e.ReferenceTime().Format("01-02 15:04"), e.Symbol, e.Direction, e.Result)
		if e.Result != models.ResultOpen {
			fmt.Fprintf(&b, " %.1f pips", e.Pips)
		}
		b.WriteString("\n")
	}
	_, _ = t.Send(ctx, b.String())
}

func (t *Telegram) handleEval(ctx context.Context) {
	closed, err := t.eval.EvaluateOpen(ctx)
	if err != nil {
		logger.Error("eval: %v", err)
		_, _ = t.Send(ctx, "⚠️ Evaluation failed.")
		return
	}
	if len(closed) == 0 {
		_, _ = t.Send(ctx, "⏳ Nothing closed, open signals stay open.")
		return
	}
	for _, e := range closed {
		t.NotifyClose(ctx, e)
		if err := t.memory.Record(e); err != nil {
			logger.Error("memory record %s: %v", e.ID, err)
		}
	}
}

func (t *Telegram) handleCallback(ctx context.Context, cb *tgbot.CallbackQuery) {
	// answer right away so the button stops spinning
	_, _ = t.bot.Request(tgbot.NewCallback(cb.ID, ""))

	data := cb.Data
	sep := strings.Index(data, "::")
	if sep < 0 {
		return
	}
	id := data[sep+2:]

	card, ok := t.cards.Card(id)
	if !ok {
		_ = t.editReplyMarkupRemove(cb.Message.MessageID)
		_, _ = t.Send(ctx, "⌛️ That card is from an old sweep, wait for the next scan.")
		return
	}

	switch {
	case strings.HasPrefix(data, takePrefix):
		t.handleTake(ctx, card, cb.Message.MessageID)
	case strings.HasPrefix(data, skipPrefix):
		_ = t.editReplyMarkupRemove(cb.Message.MessageID)
		_ = t.editText(cb.Message.MessageID, formatCard(card)+"\n\n❌ Skipped")
	case strings.HasPrefix(data, explainPrefix):
		_, _ = t.Send(ctx, signals.Explain(card))
	}
}

func (t *Telegram) handleTake(ctx context.Context, card models.Signal, msgID int) {
	entry := models.EntryFromSignal(card, t.now().UTC())
	if err := t.store.Insert(ctx, entry); err != nil {
		logger.Error("take %s: %v", card.ID, err)
		_, _ = t.Send(ctx, "⚠️ Could not save the signal, try again.")
		return
	}
	_ = t.editReplyMarkupRemove(msgID)
	_ = t.editText(msgID, formatCard(card)+"\n\n✅ Taken, tracking until TP1 or SL")
}
