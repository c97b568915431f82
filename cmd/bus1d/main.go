// Command bus1d runs a standalone bus1 directory with its debug and
// monitor surfaces exposed over HTTP, for local experimentation.
package main

import (
	"flag"

	bus1 "github.com/ailidani/bus1"
	"github.com/ailidani/bus1/httpdebug"
	"github.com/ailidani/bus1/internal/log"
	"github.com/ailidani/bus1/monitor"
)

var monitorSecret = flag.String("monitor_secret", "bus1-dev-secret", "HMAC secret monitor subscribers authenticate with")

func main() {
	bus1.Init()
	cfg := bus1.GetConfig()

	dir := bus1.NewDirectory()
	hub := monitor.NewHub([]byte(*monitorSecret))

	debugSrv := httpdebug.New(dir, cfg.HTTPAddr)
	go func() {
		if err := debugSrv.ListenAndServe(); err != nil {
			log.Fatalf("bus1d: httpdebug server: %v", err)
		}
	}()

	log.Infof("bus1d: monitor listening on %s", cfg.MonitorAddr)
	log.Fatal(listenMonitor(cfg.MonitorAddr, hub))
}
