// Package signals turns raw indicator readings into buy/sell/hold signals.
package signals

import (
	"fmt"
	"math"

	"github.com/stockdash/backend/internal/domain"
	"github.com/stockdash/backend/pkg/formulas"
)

// Indicator names as they appear in TechnicalIndicator.Name
const (
	NameRSI          = "RSI"
	NameMACD         = "MACD"
	NameBollinger    = "Bollinger Bands"
	NameSMACrossover = "SMA Crossover"
	NameEMACrossover = "EMA Crossover"
)

const (
	rsiOversold   = 30.0
	rsiOverbought = 70.0

	smaShortPeriod = 20
	smaLongPeriod  = 50
)

// Reading is a mapped signal before it is attached to an indicator
type Reading struct {
	Signal   domain.Signal
	Strength float64
}

// MapRSI maps an RSI value: below 30 is oversold (buy), above 70 overbought (sell).
// Strength is the distance from 50, doubled.
func MapRSI(rsi float64) Reading {
	signal := domain.SignalHold
	switch {
	case rsi < rsiOversold:
		signal = domain.SignalBuy
	case rsi > rsiOverbought:
		signal = domain.SignalSell
	}

	return Reading{Signal: signal, Strength: clampStrength(math.Abs(rsi-50) * 2)}
}

// MapMACD maps MACD against its signal line. Equality counts as sell.
func MapMACD(macd, signalLine float64) Reading {
	signal := domain.SignalSell
	if macd > signalLine {
		signal = domain.SignalBuy
	}

	return Reading{Signal: signal, Strength: clampStrength(math.Abs(macd-signalLine) * 100)}
}

// MapBollinger maps price against the bands: below lower is buy, above upper is sell.
func MapBollinger(price float64, bands formulas.BollingerBands) Reading {
	signal := domain.SignalHold
	switch {
	case price < bands.Lower:
		signal = domain.SignalBuy
	case price > bands.Upper:
		signal = domain.SignalSell
	}

	strength := 0.0
	if bands.Middle != 0 {
		strength = math.Abs(price-bands.Middle) / bands.Middle * 100
	}

	return Reading{Signal: signal, Strength: clampStrength(strength)}
}

// MapCrossover maps a short/long moving-average pair. Equality counts as sell.
func MapCrossover(short, long float64) Reading {
	signal := domain.SignalSell
	if short > long {
		signal = domain.SignalBuy
	}

	strength := 0.0
	if long != 0 {
		strength = math.Abs(short-long) / long * 100
	}

	return Reading{Signal: signal, Strength: clampStrength(strength)}
}

// Build produces every indicator that can be derived for the symbol.
//
// For each indicator the provider value is preferred; otherwise the value is
// computed from closes. Indicators that are neither supplied nor computable are
// omitted so callers never see a fabricated hold.
func Build(closes []float64, price float64, enhanced *domain.EnhancedIndicators) []domain.TechnicalIndicator {
	if enhanced == nil {
		enhanced = &domain.EnhancedIndicators{}
	}

	var out []domain.TechnicalIndicator
	add := func(name string, value float64, r Reading, src domain.IndicatorSource) {
		out = append(out, domain.TechnicalIndicator{
			Name:     name,
			Value:    value,
			Signal:   r.Signal,
			Strength: r.Strength,
			Source:   src,
		})
	}

	if v, src := pick(enhanced.RSI, func() *float64 {
		return formulas.CalculateRSI(closes, formulas.DefaultRSIPeriod)
	}); v != nil {
		add(NameRSI, *v, MapRSI(*v), src)
	}

	if m, src := macd(closes, enhanced); m != nil {
		add(NameMACD, m.MACD, MapMACD(m.MACD, m.Signal), src)
	}

	if b, src := bollinger(closes, enhanced); b != nil {
		add(NameBollinger, b.Middle, MapBollinger(price, *b), src)
	}

	if short, long, src := crossover(enhanced.SMA20, enhanced.SMA50, func(p int) *float64 {
		return formulas.CalculateSMA(closes, p)
	}, smaShortPeriod, smaLongPeriod); short != nil {
		add(NameSMACrossover, *short, MapCrossover(*short, *long), src)
	}

	if short, long, src := crossover(enhanced.EMA12, enhanced.EMA26, func(p int) *float64 {
		if len(closes) < p {
			return nil
		}
		return formulas.CalculateEMA(closes, p)
	}, formulas.MACDFastPeriod, formulas.MACDSlowPeriod); short != nil {
		add(NameEMACrossover, *short, MapCrossover(*short, *long), src)
	}

	return out
}

// requirements lists every indicator Build can produce with the closes it
// needs when the provider supplies nothing
var requirements = []struct {
	name   string
	closes int
}{
	{NameRSI, formulas.DefaultRSIPeriod + 1},
	{NameMACD, formulas.MACDSlowPeriod},
	{NameBollinger, formulas.DefaultBollingerPeriod},
	{NameSMACrossover, smaLongPeriod},
	{NameEMACrossover, formulas.MACDSlowPeriod},
}

// Unavailable explains every indicator missing from built as an
// *domain.IndicatorUnavailableError, in Build's order. closes is the length of
// the series Build was given.
func Unavailable(built []domain.TechnicalIndicator, closes int) []error {
	have := make(map[string]bool, len(built))
	for _, ind := range built {
		have[ind.Name] = true
	}

	var errs []error
	for _, req := range requirements {
		if have[req.name] {
			continue
		}
		errs = append(errs, &domain.IndicatorUnavailableError{
			Indicator: req.name,
			Reason:    fmt.Sprintf("not supplied and %d closes given, %d needed", closes, req.closes),
		})
	}
	return errs
}

func pick(provided *float64, compute func() *float64) (*float64, domain.IndicatorSource) {
	if provided != nil && !math.IsNaN(*provided) {
		return provided, domain.SourceProvider
	}
	return compute(), domain.SourceCalculated
}

func macd(closes []float64, e *domain.EnhancedIndicators) (*formulas.MACD, domain.IndicatorSource) {
	if e.MACD != nil {
		signal := *e.MACD * 0.9
		if e.MACDSignal != nil {
			signal = *e.MACDSignal
		}
		return &formulas.MACD{MACD: *e.MACD, Signal: signal, Histogram: *e.MACD - signal}, domain.SourceProvider
	}
	return formulas.CalculateMACD(closes), domain.SourceCalculated
}

func bollinger(closes []float64, e *domain.EnhancedIndicators) (*formulas.BollingerBands, domain.IndicatorSource) {
	if e.BollingerUpper != nil && e.BollingerMid != nil && e.BollingerLower != nil {
		return &formulas.BollingerBands{
			Upper:  *e.BollingerUpper,
			Middle: *e.BollingerMid,
			Lower:  *e.BollingerLower,
		}, domain.SourceProvider
	}
	return formulas.CalculateBollingerBands(closes, formulas.DefaultBollingerPeriod, formulas.DefaultBollingerMultiplier), domain.SourceCalculated
}

// crossover needs both legs; a pair is only provider-sourced when both were supplied.
func crossover(shortP, longP *float64, compute func(int) *float64, shortPeriod, longPeriod int) (*float64, *float64, domain.IndicatorSource) {
	if shortP != nil && longP != nil {
		return shortP, longP, domain.SourceProvider
	}

	short, long := compute(shortPeriod), compute(longPeriod)
	if short == nil || long == nil {
		return nil, nil, domain.SourceCalculated
	}
	return short, long, domain.SourceCalculated
}

func clampStrength(v float64) float64 {
	return formulas.Clamp(v, 0, 100)
}
