package main

import (
	"net/http"

	"github.com/ailidani/bus1/monitor"
)

func listenMonitor(addr string, hub *monitor.Hub) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", hub.ServeHTTP)
	return http.ListenAndServe(addr, mux)
}
