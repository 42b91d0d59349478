package binance

import (
	"encoding/json"
	"fmt"

	"SentiPull/internal/domain/models"

	"github.com/shopspring/decimal"
)

// rawKline is one kline row: mixed integers and quoted decimals.
type rawKline []json.RawMessage

func (k rawKline) candle() (models.Candle, error) {
	if len(k) < 12 {
		return models.Candle{}, fmt.Errorf("kline has %d fields, want 12", len(k))
	}
	var (
		c    models.Candle
		errs []error
	)
	ms := func(i int) int64 {
		var v int64
		if err := json.Unmarshal(k[i], &v); err != nil {
			errs = append(errs, fmt.Errorf("field %d: %w", i, err))
		}
		return v
	}
	num := func(i int) float64 {
		var d decimal.Decimal
		if err := d.UnmarshalJSON(k[i]); err != nil {
			errs = append(errs, fmt.Errorf("field %d: %w", i, err))
		}
		return d.InexactFloat64()
	}

	c.OpenTime = ms(0)
	c.Open = num(1)
	c.High = num(2)
	c.Low = num(3)
	c.Close = num(4)
	c.Volume = num(5)
	c.CloseTime = ms(6)
	c.QuoteAssetVolume = num(7)
	c.Trades = ms(8)
	c.TakerBuyBaseAssetVolume = num(9)
	c.TakerBuyQuoteAssetVolume = num(10)
	c.Ignore = num(11)
	if len(errs) > 0 {
		return models.Candle{}, fmt.Errorf("parse kline: %w", errs[0])
	}
	return c, nil
}

// fillGaps inserts a copy of the previous candle, shifted by one bin, for
// every bin missing between two consecutive candles.
func fillGaps(candles []models.Candle, binSize int) []models.Candle {
	if len(candles) == 0 {
		return candles
	}
	step := int64(binSize) * 1000
	out := make([]models.Candle, 0, len(candles))
	out = append(out, candles[0])
	for _, next := range candles[1:] {
		for next.OpenTime > out[len(out)-1].OpenTime+step {
			filler := out[len(out)-1]
			filler.OpenTime += step
			filler.CloseTime += step
			out = append(out, filler)
		}
		out = append(out, next)
	}
	return out
}
