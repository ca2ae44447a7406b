package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Transport — клиентский http.RoundTripper: проставляет X-Request-Id
// и пишет строку лога на каждый исходящий запрос.
type Transport struct {
	Base http.RoundTripper
	Log  *logrus.Logger
}

// NewTransport оборачивает base (nil — http.DefaultTransport).
func NewTransport(base http.RoundTripper, log *logrus.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base, Log: log}
}

func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	id := requestID(r)
	// RoundTripper не должен менять исходный запрос
	r = r.Clone(r.Context())
	r.Header.Set(RequestIDHeader, id)

	start := time.Now()
	resp, err := t.Base.RoundTrip(r)
	d := time.Since(start)

	if t.Log == nil {
		return resp, err
	}
	entry := t.Log.WithFields(logrus.Fields{
		"reqid":  id,
		"method": r.Method,
		"url":    r.URL.Redacted(),
		"dur":    d,
	})
	if err != nil {
		entry.WithError(err).Debug("http request failed")
		return resp, err
	}
	entry.WithField("status", resp.StatusCode).Debug("http request")
	return resp, nil
}
