package contracts

// Metric names a fundamental column. Filters, scoring and ranking all
// address columns by Metric so "column absent" stays distinct from
// "value missing on one row".
type Metric string

const (
	MetricPE             Metric = "pe"
	MetricPB             Metric = "pb"
	MetricROE            Metric = "roe"
	MetricDividend       Metric = "dv_ratio"
	MetricTurnover       Metric = "turnover_rate"
	MetricMarketCap      Metric = "market_cap"
	MetricClose          Metric = "close"
	MetricNetMargin      Metric = "netprofit_margin"
	MetricGrossMargin    Metric = "grossprofit_margin"
	MetricCompositeScore Metric = "composite_score"
)

// InstrumentRecord is one instrument's fundamental snapshot plus the
// scores derived from it. Pointer fields distinguish a missing value
// from a real zero.
type InstrumentRecord struct {
	Code string `json:"code"`
	Name string `json:"name"`

	PE          *float64 `json:"pe,omitempty"`
	PB          *float64 `json:"pb,omitempty"`
	ROE         *float64 `json:"roe,omitempty"`
	Dividend    *float64 `json:"dv_ratio,omitempty"`
	Turnover    *float64 `json:"turnover_rate,omitempty"`
	MarketCap   *float64 `json:"market_cap,omitempty"`
	Close       *float64 `json:"close,omitempty"`
	NetMargin   *float64 `json:"netprofit_margin,omitempty"`
	GrossMargin *float64 `json:"grossprofit_margin,omitempty"`

	PEScore        float64 `json:"pe_score"`
	PBScore        float64 `json:"pb_score"`
	ROEScore       float64 `json:"roe_score"`
	DividendScore  float64 `json:"dividend_score"`
	LiquidityScore float64 `json:"liquidity_score"`
	CompositeScore float64 `json:"composite_score"`
	Rank           int     `json:"rank,omitempty"`
}

// Get returns the raw value of a metric column. ok is false when the
// value is missing on this row.
func (r *InstrumentRecord) Get(m Metric) (float64, bool) {
	var p *float64
	switch m {
	case MetricPE:
		p = r.PE
	case MetricPB:
		p = r.PB
	case MetricROE:
		p = r.ROE
	case MetricDividend:
		p = r.Dividend
	case MetricTurnover:
		p = r.Turnover
	case MetricMarketCap:
		p = r.MarketCap
	case MetricClose:
		p = r.Close
	case MetricNetMargin:
		p = r.NetMargin
	case MetricGrossMargin:
		p = r.GrossMargin
	case MetricCompositeScore:
		return r.CompositeScore, true
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Float returns a pointer to a copy of v. Convenience for building records.
func Float(v float64) *float64 {
	return &v
}

// Table is a set of instrument rows plus the columns the upstream data
// source actually delivered. A column the source never sent is treated
// differently from a row-level gap by the scoring policies.
type Table struct {
	Rows []InstrumentRecord
	cols map[Metric]bool
}

// NewTable builds a table with an explicit column set
func NewTable(rows []InstrumentRecord, columns ...Metric) *Table {
	cols := make(map[Metric]bool, len(columns))
	for _, c := range columns {
		cols[c] = true
	}
	return &Table{Rows: rows, cols: cols}
}

// InferTable builds a table whose column set is every metric present on
// at least one row. Used when the source gives no schema.
func InferTable(rows []InstrumentRecord) *Table {
	all := []Metric{
		MetricPE, MetricPB, MetricROE, MetricDividend, MetricTurnover,
		MetricMarketCap, MetricClose, MetricNetMargin, MetricGrossMargin,
	}
	cols := make(map[Metric]bool)
	for _, r := range rows {
		for _, m := range all {
			if _, ok := r.Get(m); ok {
				cols[m] = true
			}
		}
	}
	return &Table{Rows: rows, cols: cols}
}

// HasColumn reports whether the source delivered the column at all
func (t *Table) HasColumn(m Metric) bool {
	return t.cols[m]
}

// AddColumn marks a column as present
func (t *Table) AddColumn(m Metric) {
	if t.cols == nil {
		t.cols = make(map[Metric]bool)
	}
	t.cols[m] = true
}

// Columns returns the set of delivered columns
func (t *Table) Columns() []Metric {
	out := make([]Metric, 0, len(t.cols))
	for m := range t.cols {
		out = append(out, m)
	}
	return out
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Copy returns a table with copied rows and the same column set
func (t *Table) Copy() *Table {
	rows := make([]InstrumentRecord, len(t.Rows))
	copy(rows, t.Rows)
	cols := make(map[Metric]bool, len(t.cols))
	for m, v := range t.cols {
		cols[m] = v
	}
	return &Table{Rows: rows, cols: cols}
}
