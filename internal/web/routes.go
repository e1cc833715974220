package web

import "net/http"

// NewDefaultMux builds the mux shared by the device and the simulator:
// - /api/v1/* for the status API
// - /metrics for Prometheus, when a handler is given
func NewDefaultMux(deps APIV1Deps) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", apiV1Router(deps)))
	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics)
	}
	return mux
}
