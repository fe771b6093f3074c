package mux

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// clientAddr returns the address of the client, preferring the first X-Forwarded-For hop
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Warn("could not encode response")
	}
}

type apiError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// writeJSONError responds with an apiError. Server errors are logged and replaced with the status text.
func writeJSONError(w http.ResponseWriter, statusCode int, err error) {
	body := apiError{StatusCode: statusCode, Message: http.StatusText(statusCode)}
	switch {
	case statusCode >= 500:
		logrus.WithField("statusCode", statusCode).WithError(err).Error("request failed")
	case err != nil:
		body.Message = err.Error()
	}

	writeJSON(w, statusCode, body)
}
