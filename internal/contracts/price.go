package contracts

import "time"

// Bar is a single daily OHLCV candle.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is the per-instrument daily price history, oldest bar first.
// ⭐ SSOT: 所有技术指标计算都从这个结构取数
type PriceSeries struct {
	Code      string `json:"code"`
	Bars      []Bar  `json:"bars"`
	HasVolume bool   `json:"has_volume"`
}

// NewPriceSeries builds a series from bars, assumed oldest first.
func NewPriceSeries(code string, bars []Bar) *PriceSeries {
	hasVolume := false
	for _, b := range bars {
		if b.Volume > 0 {
			hasVolume = true
			break
		}
	}
	return &PriceSeries{Code: code, Bars: bars, HasVolume: hasVolume}
}

// Len returns the number of bars
func (p *PriceSeries) Len() int {
	return len(p.Bars)
}

// Closes returns the close prices, oldest first
func (p *PriceSeries) Closes() []float64 {
	out := make([]float64, len(p.Bars))
	for i, b := range p.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns the volumes, oldest first
func (p *PriceSeries) Volumes() []float64 {
	out := make([]float64, len(p.Bars))
	for i, b := range p.Bars {
		out[i] = b.Volume
	}
	return out
}

// Latest returns the most recent bar. ok is false for an empty series.
func (p *PriceSeries) Latest() (Bar, bool) {
	if len(p.Bars) == 0 {
		return Bar{}, false
	}
	return p.Bars[len(p.Bars)-1], true
}

// Validate checks the series has a code and at least one bar
func (p *PriceSeries) Validate() error {
	if p.Code == "" {
		return NewValidationError("code", "must not be empty")
	}
	if len(p.Bars) == 0 {
		return NewValidationError("bars", "must not be empty")
	}
	return nil
}
