package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kunleyo/partlog/internal/log"
)

func TestHTTPProduceConsume(t *testing.T) {
	dir := t.TempDir()
	partition, err := log.Create("topic", dir, log.MaxBytes{Log: 1024, Index: 64}, nil)
	require.NoError(t, err)
	defer partition.Close()

	srv := NewHTTPServer("127.0.0.1:0", partition, nil)
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	body, err := json.Marshal(ProduceRequest{Value: []byte("hello world")})
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+"/", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var produced ProduceResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&produced))
	require.Equal(t, uint64(0), produced.Offset)

	resp, err = http.Get(ts.URL + "/0")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var consumed ConsumeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&consumed))
	require.Equal(t, []byte("hello world"), consumed.Value)
}

func TestHTTPConsumeUnknownOffsetIsNotFound(t *testing.T) {
	dir := t.TempDir()
	partition, err := log.Create("topic", dir, log.MaxBytes{Log: 1024, Index: 64}, nil)
	require.NoError(t, err)
	defer partition.Close()

	srv := NewHTTPServer("127.0.0.1:0", partition, nil)
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/5")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPProduceMultipleRecordsPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	partition, err := log.Create("topic", dir, log.MaxBytes{Log: 1024, Index: 64}, nil)
	require.NoError(t, err)
	defer partition.Close()

	srv := NewHTTPServer("127.0.0.1:0", partition, nil)
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	values := []string{"first", "second", "third"}
	for _, v := range values {
		body, err := json.Marshal(ProduceRequest{Value: []byte(v)})
		require.NoError(t, err)
		resp, err := http.Post(ts.URL+"/", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
	}

	for i, v := range values {
		resp, err := http.Get(ts.URL + "/" + strconv.Itoa(i))
		require.NoError(t, err)
		var consumed ConsumeResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&consumed))
		resp.Body.Close()
		require.Equal(t, v, string(consumed.Value))
	}
}

