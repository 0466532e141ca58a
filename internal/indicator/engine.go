package indicator

import (
	"math"

	"github.com/TangUsers/stock-analysis-saas/internal/contracts"
	"github.com/TangUsers/stock-analysis-saas/pkg/logger"
)

// Default calculation windows
var (
	DefaultMAWindows  = []int{5, 10, 20, 60, 120}
	DefaultRSIPeriods = []int{6, 12, 24}
)

const (
	DefaultBollingerWindow = 20
	DefaultBollingerK      = 2.0

	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// MACDResult holds the MACD triple. Hist is (DIF - DEA) * 2.
type MACDResult struct {
	DIF  float64 `json:"dif"`
	DEA  float64 `json:"dea"`
	Hist float64 `json:"hist"`
}

// BollingerResult holds the band values for the latest close
type BollingerResult struct {
	Upper     float64 `json:"upper"`
	Middle    float64 `json:"middle"`
	Lower     float64 `json:"lower"`
	Bandwidth float64 `json:"bandwidth"` // (upper-middle)/middle * 100
	PercentB  float64 `json:"percent_b"` // position of latest close within the band
}

// VolumeSummary describes the latest volume against recent history
type VolumeSummary struct {
	AvgVolume    float64 `json:"avg_volume"`
	LatestVolume float64 `json:"latest_volume"`
	VolumeChange float64 `json:"volume_change"` // percent vs previous day
	Trend        string  `json:"trend"`         // 量价关系描述
}

// Engine computes technical indicators over one instrument's price series.
// All calculations use the close series, oldest value first.
// ⭐ SSOT: 指标公式只在这里实现
type Engine struct {
	series *contracts.PriceSeries
	close  []float64
	logger *logger.Logger
}

// New creates an engine from a full price series
func New(series *contracts.PriceSeries, log *logger.Logger) (*Engine, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		series: series,
		close:  series.Closes(),
		logger: log,
	}, nil
}

// NewFromCloses creates an engine from a bare close-price slice. Volume
// analysis is unavailable on such an engine.
func NewFromCloses(code string, closes []float64, log *logger.Logger) (*Engine, error) {
	if len(closes) == 0 {
		return nil, contracts.NewValidationError("close", "must not be empty")
	}
	bars := make([]contracts.Bar, len(closes))
	for i, c := range closes {
		bars[i].Close = c
	}
	return &Engine{
		series: &contracts.PriceSeries{Code: code, Bars: bars},
		close:  closes,
		logger: log,
	}, nil
}

// Code returns the instrument code
func (e *Engine) Code() string {
	return e.series.Code
}

// LatestClose returns the most recent close price
func (e *Engine) LatestClose() float64 {
	return e.close[len(e.close)-1]
}

// MovingAverages computes simple moving averages for the given windows
// (default 5/10/20/60/120). A window longer than the series falls back
// to the mean of the whole series.
func (e *Engine) MovingAverages(windows ...int) map[int]float64 {
	if len(windows) == 0 {
		windows = DefaultMAWindows
	}

	out := make(map[int]float64, len(windows))
	for _, w := range windows {
		if len(e.close) >= w {
			out[w] = round2(mean(e.close[len(e.close)-w:]))
		} else {
			out[w] = round2(mean(e.close))
		}
	}
	return out
}

// MACD computes the MACD triple with the given periods (default 12/26/9).
// DIF is EMA(fast) - EMA(slow); DEA is the EMA of the close series over
// the signal period; Hist is (DIF - DEA) * 2.
func (e *Engine) MACD(fast, slow, signal int) MACDResult {
	dif := ema(e.close, fast) - ema(e.close, slow)
	dea := ema(e.close, signal)
	hist := (dif - dea) * 2

	return MACDResult{
		DIF:  round4(dif),
		DEA:  round4(dea),
		Hist: round4(hist),
	}
}

// RSI computes the relative strength index for the given periods
// (default 6/12/24), using the simple mean of gains and losses over the
// last period deltas. A series shorter than period+1 yields the neutral
// value 50.
func (e *Engine) RSI(periods ...int) map[int]float64 {
	if len(periods) == 0 {
		periods = DefaultRSIPeriods
	}

	out := make(map[int]float64, len(periods))
	for _, p := range periods {
		out[p] = round2(rsi(e.close, p))
	}
	return out
}

// Bollinger computes Bollinger Bands for the given window and multiplier
// (default 20, 2.0). A series shorter than the window uses the whole
// series for mean and deviation.
func (e *Engine) Bollinger(window int, k float64) BollingerResult {
	var middle, std float64
	if len(e.close) >= window {
		tail := e.close[len(e.close)-window:]
		middle = mean(tail)
		std = sampleStd(tail)
	} else {
		middle = mean(e.close)
		std = sampleStd(e.close)
	}

	upper := middle + k*std
	lower := middle - k*std

	latest := e.LatestClose()
	percentB := 0.5
	if upper != lower {
		percentB = (latest - lower) / (upper - lower)
	}

	bandwidth := 0.0
	if middle != 0 {
		bandwidth = (upper - middle) / middle * 100
	}

	return BollingerResult{
		Upper:     round2(upper),
		Middle:    round2(middle),
		Lower:     round2(lower),
		Bandwidth: round2(bandwidth),
		PercentB:  round4(percentB),
	}
}

// VolumeSummary analyzes the latest volume against its recent history.
// Fewer than two volume points yields the 数据不足 summary.
func (e *Engine) VolumeSummary() (VolumeSummary, error) {
	if !e.series.HasVolume {
		return VolumeSummary{}, contracts.NewValidationError("volume", "series has no volume data")
	}

	volume := e.series.Volumes()
	thresholds := DefaultVolumeThresholds()

	if len(volume) < 2 {
		first := 0.0
		if len(volume) > 0 {
			first = volume[0]
		}
		return VolumeSummary{
			AvgVolume:    first,
			LatestVolume: first,
			VolumeChange: 0,
			Trend:        "数据不足",
		}, nil
	}

	avgVolume := mean(volume[:len(volume)-1])
	latestVolume := volume[len(volume)-1]
	prevVolume := volume[len(volume)-2]

	volumeChange := 0.0
	if prevVolume > 0 {
		volumeChange = (latestVolume - prevVolume) / prevVolume * 100
	}

	priceChange := 0.0
	if len(e.close) >= 2 {
		prevClose := e.close[len(e.close)-2]
		if prevClose != 0 {
			priceChange = (e.LatestClose() - prevClose) / prevClose * 100
		}
	}

	return VolumeSummary{
		AvgVolume:    math.Round(avgVolume),
		LatestVolume: math.Round(latestVolume),
		VolumeChange: round2(volumeChange),
		Trend:        thresholds.classify(volumeChange, priceChange),
	}, nil
}

// VolumeThresholds configures the 量价关系 classification
type VolumeThresholds struct {
	SurgePct  float64 // volume change above this is 放量
	ShrinkPct float64 // volume change below this is 缩量
}

// DefaultVolumeThresholds returns the standard ±20% thresholds
func DefaultVolumeThresholds() VolumeThresholds {
	return VolumeThresholds{SurgePct: 20, ShrinkPct: -20}
}

func (t VolumeThresholds) classify(volumeChange, priceChange float64) string {
	switch {
	case volumeChange > t.SurgePct && priceChange > 0:
		return "量价齐升（健康上涨）"
	case volumeChange > t.SurgePct && priceChange < 0:
		return "量增价跌（主力出货）"
	case volumeChange < t.ShrinkPct && priceChange < 0:
		return "量价齐跌（筑底整理）"
	case volumeChange < t.ShrinkPct && priceChange > 0:
		return "无量上涨（虚涨诱多）"
	case volumeChange >= t.ShrinkPct && volumeChange <= t.SurgePct:
		return "量价平稳（正常整理）"
	default:
		return "量能异动"
	}
}

// ---- calculation helpers ----

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// ema computes the exponential moving average over the whole series and
// returns the final value. The recursion is seeded with the first value
// and uses alpha = 2/(span+1).
func ema(values []float64, span int) float64 {
	if len(values) == 0 {
		return 0
	}
	alpha := 2.0 / (float64(span) + 1.0)
	v := values[0]
	for _, x := range values[1:] {
		v = alpha*x + (1-alpha)*v
	}
	return v
}

// rsi computes the last RSI value for one period. Too-short series,
// and a flat series with no gains or losses, yield the neutral 50;
// all-gain with no losses yields 100.
func rsi(close []float64, period int) float64 {
	if len(close) < period+1 {
		return 50
	}

	var gainSum, lossSum float64
	for i := len(close) - period; i < len(close); i++ {
		delta := close[i] - close[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum += -delta
		}
	}

	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// sampleStd computes the sample standard deviation (n-1 denominator).
// Fewer than two values yields 0.
func sampleStd(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(n-1))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
