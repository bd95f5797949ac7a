package server

import (
	"net/http"

	"echoserver/internal/gateway/handler"
	"echoserver/internal/gateway/middleware"
)

// NewMux wires the single wildcard echo route alongside the two control
// endpoints. net/http's pattern matching handles the per-method dispatch
// (spec's {GET, POST, PUT, DELETE, HEAD}) since every one of those methods
// resolves identically; the "GET /" pattern also serves HEAD requests.
func NewMux(echoHandler *handler.EchoHandler, controlHandler *handler.ControlHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /_echo_reset", controlHandler.HandleReset)
	mux.HandleFunc("GET /_echo_list_rules", controlHandler.HandleListRules)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		mux.Handle(method+" /", echoHandler)
	}

	return middleware.CORS(middleware.RequestID(mux))
}
