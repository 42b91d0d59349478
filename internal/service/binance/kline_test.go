package binance

import (
	"encoding/json"
	"testing"

	"SentiPull/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawKlineCandle(t *testing.T) {
	var rows []rawKline
	body := `[[1499040000000,"0.01634790","0.80000000","0.01575800","0.01577100","148976.11427815",1499644799999,"2434.19055334",308,"1756.87402397","28.46694368","0"]]`
	require.NoError(t, json.Unmarshal([]byte(body), &rows))

	c, err := rows[0].candle()
	require.NoError(t, err)
	assert.Equal(t, int64(1499040000000), c.OpenTime)
	assert.Equal(t, 0.0163479, c.Open)
	assert.Equal(t, 0.8, c.High)
	assert.Equal(t, 0.015771, c.Close)
	assert.Equal(t, int64(1499644799999), c.CloseTime)
	assert.Equal(t, int64(308), c.Trades)
	assert.Equal(t, []float64{0.0163479, 0.015771, 0.8, 0.015758, 148976.11427815, 308}, c.Features())
}

func TestRawKlineRejectsShortOrBadRows(t *testing.T) {
	_, err := rawKline{json.RawMessage(`1`)}.candle()
	assert.Error(t, err)

	var rows []rawKline
	require.NoError(t, json.Unmarshal([]byte(`[[1,"1","1","1","1","1",1,"1",1,"1","1"]]`), &rows))
	_, err = rows[0].candle()
	assert.EqualError(t, err, "kline has 11 fields, want 12")

	body := `[["x","1","1","1","1","1",1,"1",1,"1","1","0"]]`
	require.NoError(t, json.Unmarshal([]byte(body), &rows))
	_, err = rows[0].candle()
	assert.Error(t, err)
}

func TestFillGaps(t *testing.T) {
	in := []models.Candle{
		{OpenTime: 0, CloseTime: 3599999, Close: 10},
		{OpenTime: 7200000, CloseTime: 10799999, Close: 12},
	}
	out := fillGaps(in, 3600)
	require.Len(t, out, 3)
	assert.Equal(t, int64(3600000), out[1].OpenTime)
	assert.Equal(t, int64(7199999), out[1].CloseTime)
	assert.Equal(t, 10.0, out[1].Close, "filler repeats the previous candle")
	assert.Equal(t, in[1], out[2])
}

func TestFillGapsLongRun(t *testing.T) {
	in := []models.Candle{{OpenTime: 0}, {OpenTime: 5 * 60000}}
	out := fillGaps(in, 60)
	require.Len(t, out, 6)
	for i, c := range out {
		assert.Equal(t, int64(i)*60000, c.OpenTime)
	}
	assert.Empty(t, fillGaps(nil, 60))
}
