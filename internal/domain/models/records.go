package models

// SentimentEvent is one aggregated sentiment sample as served by the
// sentiment API and stored in the cache.
type SentimentEvent struct {
	Datetime string    `json:"datetime" msgpack:"datetime"`
	TEpoch   float64   `json:"t_epoch" msgpack:"t_epoch"`
	Counts   []float64 `json:"counts" msgpack:"counts"`
}

// Candle is one kline in the upstream fixed-position layout. It is stored as
// a msgpack array in the same field order.
type Candle struct {
	_msgpack struct{} `msgpack:",as_array"`

	OpenTime                 int64
	Open                     float64
	High                     float64
	Low                      float64
	Close                    float64
	Volume                   float64
	CloseTime                int64
	QuoteAssetVolume         float64
	Trades                   int64
	TakerBuyBaseAssetVolume  float64
	TakerBuyQuoteAssetVolume float64
	Ignore                   float64
}

// CandleKeys is the feature order produced for the price source.
var CandleKeys = []string{"open", "close", "high", "low", "volume", "trades"}

// Features returns the candle's values in CandleKeys order.
func (c Candle) Features() []float64 {
	return []float64{c.Open, c.Close, c.High, c.Low, c.Volume, float64(c.Trades)}
}
