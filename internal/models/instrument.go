package models

import "math"

// Instrument is the per-symbol configuration record: feed ticker remap,
// quote inversion, price precision and pip size all live here instead of
// being scattered across string-keyed tables.
type Instrument struct {
	Symbol     string  `yaml:"symbol"`
	FeedTicker string  `yaml:"feed_ticker"`
	Invert     bool    `yaml:"invert"`
	Precision  int     `yaml:"precision"`
	PipSize    float64 `yaml:"pip_size"`
}

// RoundPrice rounds p to the instrument's quote precision.
func (in Instrument) RoundPrice(p float64) float64 {
	pow := math.Pow(10, float64(in.Precision))
	return math.Round(p*pow) / pow
}

// Pips converts an absolute price distance to pips, rounded to one decimal.
func (in Instrument) Pips(dist float64) float64 {
	return math.Round(math.Abs(dist)/in.PipSize*10) / 10
}

// DefaultInstruments is the stock watchlist: major forex pairs, the two
// metals and BTC. JPY pairs quote to 3 decimals with a 0.01 pip, metals and
// crypto to 2 decimals with a 0.1 pip, everything else to 5 with 0.0001.
func DefaultInstruments() []Instrument {
	return []Instrument{
		{Symbol: "EURUSD", FeedTicker: "EURUSD=X", Precision: 5, PipSize: 0.0001},
		{Symbol: "GBPUSD", FeedTicker: "GBPUSD=X", Precision: 5, PipSize: 0.0001},
		{Symbol: "USDJPY", FeedTicker: "JPY=X", Invert: true, Precision: 3, PipSize: 0.01},
		{Symbol: "AUDUSD", FeedTicker: "AUDUSD=X", Precision: 5, PipSize: 0.0001},
		{Symbol: "NZDUSD", FeedTicker: "NZDUSD=X", Precision: 5, PipSize: 0.0001},
		{Symbol: "USDCAD", FeedTicker: "USDCAD=X", Precision: 5, PipSize: 0.0001},
		{Symbol: "USDCHF", FeedTicker: "USDCHF=X", Precision: 5, PipSize: 0.0001},
		{Symbol: "XAUUSD", FeedTicker: "XAUUSD=X", Precision: 2, PipSize: 0.1},
		{Symbol: "XAGUSD", FeedTicker: "XAGUSD=X", Precision: 2, PipSize: 0.1},
		{Symbol: "BTCUSD", FeedTicker: "BTC-USD", Precision: 2, PipSize: 0.1},
	}
}

// InstrumentSet indexes instruments by symbol.
type InstrumentSet struct {
	order []string
	bySym map[string]Instrument
}

func NewInstrumentSet(list []Instrument) *InstrumentSet {
	s := &InstrumentSet{bySym: make(map[string]Instrument, len(list))}
	for _, in := range list {
		if in.FeedTicker == "" {
			in.FeedTicker = in.Symbol
		}
		if _, dup := s.bySym[in.Symbol]; dup {
			continue
		}
		s.order = append(s.order, in.Symbol)
		s.bySym[in.Symbol] = in
	}
	return s
}

func (s *InstrumentSet) Symbols() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns the instrument record for symbol. Unknown symbols get a
// plain-forex fallback so a mistyped watchlist entry degrades instead of
// crashing the scan.
func (s *InstrumentSet) Get(symbol string) Instrument {
	if in, ok := s.bySym[symbol]; ok {
		return in
	}
	return Instrument{Symbol: symbol, FeedTicker: symbol, Precision: 5, PipSize: 0.0001}
}

func (s *InstrumentSet) Has(symbol string) bool {
	_, ok := s.bySym[symbol]
	return ok
}
