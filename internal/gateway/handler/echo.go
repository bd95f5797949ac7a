// Package handler implements the HTTP-facing pieces of the echo server: the
// single wildcard responder and the two control endpoints.
package handler

import (
	"io"
	"log"
	"net/http"
	"time"

	"echoserver/internal/echo/engine"
	"echoserver/internal/echo/reqctx"
)

// MaxRequestBodySize bounds how much of an incoming request body is read
// into memory for selector/template evaluation.
const MaxRequestBodySize = 10 << 20 // 10MB

// EchoHandler serves every path/method not claimed by a control endpoint:
// it resolves the "_echo_response" spec against the request and writes the
// result, honoring any configured delay.
type EchoHandler struct {
	Engine *engine.Engine
}

func NewEchoHandler(e *engine.Engine) *EchoHandler {
	return &EchoHandler{Engine: e}
}

func (h *EchoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var bodyBytes []byte
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
		b, err := io.ReadAll(r.Body)
		if err != nil {
			log.Printf("echo: failed to read request body for %s: %v", r.URL.Path, err)
		} else {
			bodyBytes = b
		}
	}

	ctx := reqctx.Build(r, bodyBytes)
	spec := r.URL.Query().Get("_echo_response")

	res := h.Engine.Resolve(ctx, spec)

	if res.Delay > 0 {
		select {
		case <-time.After(time.Duration(res.Delay) * time.Millisecond):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	for name, value := range res.Headers {
		w.Header().Set(name, value)
	}

	status := res.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if res.Body != "" {
		if _, err := w.Write([]byte(res.Body)); err != nil {
			log.Printf("echo: failed to write response for %s: %v", r.URL.Path, err)
		}
	}
}
