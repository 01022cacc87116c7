package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

// Client fetches OHLC candles from the upstream chart API. It owns the
// feed-boundary concerns: ticker remap, interval/range mapping, dropping
// rows with missing fields and quote inversion for inverted tickers.
type Client struct {
	http        *http.Client
	baseURL     string
	instruments *models.InstrumentSet
}

// maxCandles caps the snapshot handed to the engines.
const maxCandles = 600

var (
	feedInterval = map[string]string{
		models.TF5m:  "5m",
		models.TF15m: "15m",
		models.TF1h:  "60m",
		models.TF4h:  "240m",
	}
	feedRange = map[string]string{
		models.TF5m:  "7d",
		models.TF15m: "30d",
		models.TF1h:  "60d",
		models.TF4h:  "730d",
	}
)

func NewClient(cfg *config.Config) *Client {
	return &Client{
		http:        &http.Client{Timeout: cfg.Feed.Timeout},
		baseURL:     cfg.Feed.BaseURL,
		instruments: cfg.InstrumentSet(),
	}
}

type chartPayload struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open  []*float64 `json:"open"`
					High  []*float64 `json:"high"`
					Low   []*float64 `json:"low"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch returns candles for (symbol, timeframe), oldest first, at most
// maxCandles. Unknown timeframes are rejected; upstream trouble surfaces
// as an error and callers degrade to the insufficient-data path.
func (c *Client) Fetch(ctx context.Context, symbol, timeframe string) ([]models.Candle, error) {
	interval, ok := feedInterval[timeframe]
	if !ok {
		return nil, fmt.Errorf("unsupported timeframe %q", timeframe)
	}
	inst := c.instruments.Get(symbol)

	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		c.baseURL, url.PathEscape(inst.FeedTicker), interval, feedRange[timeframe])

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	var payload chartPayload
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("chart error %s: %s", payload.Chart.Error.Code, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("empty chart result for %s", inst.FeedTicker)
	}

	res := payload.Chart.Result[0]
	q := res.Indicators.Quote[0]

	candles := make([]models.Candle, 0, len(res.Timestamp))
	for i := range res.Timestamp {
		if i >= len(q.Open) || i >= len(q.High) || i >= len(q.Low) || i >= len(q.Close) {
			break
		}
		// rows with any missing field never reach the engines
		if q.Open[i] == nil || q.High[i] == nil || q.Low[i] == nil || q.Close[i] == nil {
			continue
		}
		candle := models.Candle{
			Time:  time.Unix(res.Timestamp[i], 0).UTC(),
			Open:  *q.Open[i],
			High:  *q.High[i],
			Low:   *q.Low[i],
			Close: *q.Close[i],
		}
		if inst.Invert {
			candle = invert(candle)
		}
		candles = append(candles, candle)
	}

	if len(candles) > maxCandles {
		candles = candles[len(candles)-maxCandles:]
	}
	return candles, nil
}

// LatestClose is the cheap price snapshot used for outcome evaluation:
// last close of the shortest timeframe available.
func (c *Client) LatestClose(ctx context.Context, symbol string) (float64, error) {
	candles, err := c.Fetch(ctx, symbol, models.TF5m)
	if err != nil {
		return 0, err
	}
	if len(candles) == 0 {
		return 0, fmt.Errorf("no candles for %s", symbol)
	}
	return candles[len(candles)-1].Close, nil
}

// invert flips a quote-inverted candle; the high/low swap because 1/x
// reverses ordering.
func invert(c models.Candle) models.Candle {
	return models.Candle{
		Time:  c.Time,
		Open:  1.0 / c.Open,
		High:  1.0 / c.Low,
		Low:   1.0 / c.High,
		Close: 1.0 / c.Close,
	}
}
