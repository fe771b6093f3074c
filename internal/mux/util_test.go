package mux

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"pokerroom-server/internal/config"
	"pokerroom-server/pkg/room"
)

func newTestMux(t *testing.T, version string) *Mux {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger, _ := test.NewNullLogger()
	opts := room.DefaultOptions()
	opts.TickRate = 100

	return NewMux(version, config.ProtocolID, room.NewPitBoss(ctx, opts, logger))
}

func Test_clientAddr(t *testing.T) {
	tests := []struct {
		remote    string
		forwarded string
		expected  string
	}{
		{"127.0.0.1:5000", "", "127.0.0.1"},
		{"[::1]:5000", "", "::1"},
		{"pipe", "", "pipe"},
		{"10.0.0.2:443", "203.0.113.7, 10.0.0.1", "203.0.113.7"},
		{"10.0.0.2:443", " , 10.0.0.1", "10.0.0.2"},
	}

	for _, tt := range tests {
		r := &http.Request{RemoteAddr: tt.remote, Header: http.Header{}}
		if tt.forwarded != "" {
			r.Header.Set("X-Forwarded-For", tt.forwarded)
		}

		assert.Equal(t, tt.expected, clientAddr(r), tt.remote+" "+tt.forwarded)
	}
}

func Test_writeJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSONError(w, http.StatusBadRequest, assert.AnError)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"`+assert.AnError.Error()+`","statusCode":400}`, w.Body.String())

	// server errors are not leaked
	w = httptest.NewRecorder()
	writeJSONError(w, http.StatusInternalServerError, assert.AnError)
	assert.JSONEq(t, `{"message":"Internal Server Error","statusCode":500}`, w.Body.String())
}

func assertDo(t *testing.T, req *http.Request, respObj interface{}, statusCode int) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Error(err)
		return nil
	}
	defer resp.Body.Close()

	if statusCode != resp.StatusCode {
		b, _ := io.ReadAll(resp.Body)
		t.Log(string(b))
		assert.Equal(t, statusCode, resp.StatusCode)
		return nil
	}

	if respObj != nil {
		if err := json.NewDecoder(resp.Body).Decode(respObj); err != nil {
			t.Error(err)
			return nil
		}
	}

	return resp
}

func assertGet(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Error(err)
		return nil
	}

	return assertDo(t, req, respObj, statusCode)
}

func assertPost(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, strings.NewReader(""))
	if err != nil {
		t.Error(err)
		return nil
	}

	return assertDo(t, req, respObj, statusCode)
}
