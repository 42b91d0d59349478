package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	Datetime string    `msgpack:"datetime"`
	TEpoch   float64   `msgpack:"t_epoch"`
	Counts   []float64 `msgpack:"counts"`
}

type row struct {
	_msgpack struct{} `msgpack:",as_array"`

	OpenTime int64
	Close    float64
}

func TestEncodeDecodeRecords(t *testing.T) {
	in := []event{
		{Datetime: "2020-01-01 00:00:00", TEpoch: 1577836800, Counts: []float64{1, 0, 3}},
		{Datetime: "2020-01-01 01:00:00", TEpoch: 1577840400, Counts: []float64{0, 2, 0}},
	}
	blob, err := Encode(in)
	require.NoError(t, err)

	var out []event
	require.NoError(t, Decode(blob, &out))
	assert.Equal(t, in, out)
}

func TestDecodeIntoGenericMaps(t *testing.T) {
	blob, err := Encode([]event{{Datetime: "x", TEpoch: 1, Counts: []float64{4}}})
	require.NoError(t, err)

	var out []map[string]interface{}
	require.NoError(t, Decode(blob, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "x", out[0]["datetime"])
	assert.Contains(t, out[0], "counts")
}

func TestArrayEncodedRows(t *testing.T) {
	blob, err := Encode([]row{{OpenTime: 3600000, Close: 7.5}})
	require.NoError(t, err)

	var generic [][]interface{}
	require.NoError(t, Decode(blob, &generic))
	require.Len(t, generic, 1)
	assert.Len(t, generic[0], 2)

	var out []row
	require.NoError(t, Decode(blob, &out))
	assert.Equal(t, int64(3600000), out[0].OpenTime)
	assert.Equal(t, 7.5, out[0].Close)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	var out []event
	assert.Error(t, Decode([]byte("not zlib"), &out))
}
