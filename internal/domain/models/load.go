package models

import "time"

// ReadPolicy decides what a cache read does with absent day files.
type ReadPolicy string

const (
	// ReadPolicyBestEffort skips absent days and reports them.
	ReadPolicyBestEffort ReadPolicy = "best-effort"
	// ReadPolicyStrict fails on the first read with absent days.
	ReadPolicyStrict ReadPolicy = "strict"
)

// IsValidReadPolicy reports whether p is a known policy.
func IsValidReadPolicy(p ReadPolicy) bool {
	switch p {
	case ReadPolicyBestEffort, ReadPolicyStrict:
		return true
	default:
		return false
	}
}

// InstrumentParams names the upstream instrument. Source and Coin apply to
// the sentiment API, Symbol to the price API.
type InstrumentParams struct {
	Source string
	Coin   string
	Symbol string
}

// ReadReport describes what a cache read found.
type ReadReport struct {
	Dir         string
	DaysRead    int
	MissingDays []time.Time
}

// LoadRequest is the input of a full load.
type LoadRequest struct {
	CacheRoot  string     `validate:"required"`
	Source     string     `validate:"required"`
	Coin       string     `validate:"required"`
	Symbol     string     `validate:"required"`
	BinSize    int        `validate:"required,gt=0" default:"3600"`
	Start      time.Time  `validate:"required"`
	End        time.Time  `validate:"required,gtfield=Start"`
	ReadPolicy ReadPolicy `validate:"oneof=best-effort strict" default:"best-effort"`
}

// Params returns the instrument parameters of the request.
func (r LoadRequest) Params() InstrumentParams {
	return InstrumentParams{Source: r.Source, Coin: r.Coin, Symbol: r.Symbol}
}

// LoadResult holds both aligned series and how they were produced.
type LoadResult struct {
	Sentiment       *Series
	Price           *Series
	SentimentReport *ReadReport
	PriceReport     *ReadReport
	TMin            float64
	TMax            float64
	BatchesFetched  int
}

// RunStatus describes the most recent load run.
type RunStatus struct {
	Runs           int       `json:"runs"`
	Running        bool      `json:"running"`
	StartedAt      time.Time `json:"started_at,omitempty"`
	FinishedAt     time.Time `json:"finished_at,omitempty"`
	Error          string    `json:"error,omitempty"`
	BatchesFetched int       `json:"batches_fetched"`
	SentimentRows  int       `json:"sentiment_rows"`
	PriceRows      int       `json:"price_rows"`
}
