package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_bot/internal/models"
)

type stubCards struct {
	cards map[string]models.Signal
}

func (s *stubCards) Card(id string) (models.Signal, bool) {
	c, ok := s.cards[id]
	return c, ok
}

type stubStore struct {
	inserted []models.LedgerEntry
}

func (s *stubStore) Load(ctx context.Context) ([]models.LedgerEntry, error) { return nil, nil }
func (s *stubStore) Insert(ctx context.Context, e models.LedgerEntry) error {
	s.inserted = append(s.inserted, e)
	return nil
}
func (s *stubStore) Save(ctx context.Context, e []models.LedgerEntry) error { return nil }

func fakeBotServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"sig","username":"sigbot"}}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			fmt.Fprint(w, `{"ok":true,"result":{"message_id":7,"chat":{"id":99}}}`)
		default:
			fmt.Fprint(w, `{"ok":true,"result":true}`)
		}
	}))
}

func newTestTelegram(t *testing.T, cards *stubCards, store *stubStore) *Telegram {
	t.Helper()
	srv := fakeBotServer(t)
	t.Cleanup(srv.Close)

	bot, err := tgbot.NewBotAPIWithAPIEndpoint("TEST:TOKEN", srv.URL+"/bot%s/%s")
	if err != nil {
		t.Fatalf("bot api: %v", err)
	}
	return &Telegram{
		bot:    bot,
		chatID: 99,
		cards:  cards,
		store:  store,
		now:    func() time.Time { return time.Date(2024, 3, 2, 12, 30, 0, 0, time.UTC) },
	}
}

func callbackFor(data string) *tgbot.CallbackQuery {
	return &tgbot.CallbackQuery{
		ID:      "cb1",
		Data:    data,
		Message: &tgbot.Message{MessageID: 7, Chat: &tgbot.Chat{ID: 99}},
	}
}

func TestHandleCallback_TakeInsertsCurrentSweepCard(t *testing.T) {
	at := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	card := models.Signal{
		ID:            models.SignalID("EURUSD", at),
		Symbol:        "EURUSD",
		Timeframe:     "15m",
		Direction:     models.DirectionLong,
		Entry:         1.1,
		StopLoss:      1.09,
		TakeProfit1:   1.11,
		TakeProfit2:   1.12,
		SignalTimeUTC: at,
	}
	cards := &stubCards{cards: map[string]models.Signal{card.ID: card}}
	store := &stubStore{}
	tg := newTestTelegram(t, cards, store)

	tg.handleCallback(context.Background(), callbackFor(takePrefix+card.ID))

	if len(store.inserted) != 1 {
		t.Fatalf("inserted = %d entries, want 1", len(store.inserted))
	}
	e := store.inserted[0]
	if e.ID != card.ID || e.Result != models.ResultOpen || !e.Taken {
		t.Errorf("unexpected ledger entry: %+v", e)
	}
	if e.TakenTimeUTC.IsZero() {
		t.Error("taken time must be stamped")
	}
}

// A card that the latest sweep no longer carries must not be takeable; its
// buttons expire with the sweep.
func TestHandleCallback_CardFromOldSweepIsRejected(t *testing.T) {
	cards := &stubCards{cards: map[string]models.Signal{}}
	store := &stubStore{}
	tg := newTestTelegram(t, cards, store)

	tg.handleCallback(context.Background(), callbackFor(takePrefix+"EURUSD-1709300000"))

	if len(store.inserted) != 0 {
		t.Fatalf("stale card must not reach the ledger, inserted %d", len(store.inserted))
	}
}

func TestHandleCallback_SkipDoesNotTouchLedger(t *testing.T) {
	at := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	card := models.Signal{ID: models.SignalID("GBPUSD", at), Symbol: "GBPUSD", Direction: models.DirectionShort, SignalTimeUTC: at}
	cards := &stubCards{cards: map[string]models.Signal{card.ID: card}}
	store := &stubStore{}
	tg := newTestTelegram(t, cards, store)

	tg.handleCallback(context.Background(), callbackFor(skipPrefix+card.ID))

	if len(store.inserted) != 0 {
		t.Fatalf("skip must not insert, got %d", len(store.inserted))
	}
}
