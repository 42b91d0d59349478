package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSONDecodesAndSendsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0.1/coins", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("coin"))
		assert.Equal(t, "sentipull/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`["bitcoin","ethereum"]`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL+"/v0.1/"), WithTimeout(time.Second))
	var coins []string
	err := c.GetJSON(context.Background(), "/coins", url.Values{"coin": {"bitcoin"}}, &coins)
	require.NoError(t, err)
	assert.Equal(t, []string{"bitcoin", "ethereum"}, coins)
}

func TestGetJSONStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/busy" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		http.Error(w, "no such symbol", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))

	err := c.GetJSON(context.Background(), "klines", nil, &[]interface{}{})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.False(t, se.Temporary())
	assert.Contains(t, se.Body, "no such symbol")

	err = c.GetJSON(context.Background(), "busy", nil, nil)
	require.True(t, errors.As(err, &se))
	assert.True(t, se.Temporary())
}

func TestGetJSONDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"t_epoch":`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	var out []map[string]interface{}
	err := c.GetJSON(context.Background(), "events/aggregated", nil, &out)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.True(t, de.Temporary())
}

func TestClientOptionsOverrideTransportAndAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sentipull-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"0":"Hacks"}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()), WithUserAgent("sentipull-test"))
	var topics map[string]string
	require.NoError(t, c.GetJSON(context.Background(), "topics", nil, &topics))
	assert.Equal(t, "Hacks", topics["0"])
}
