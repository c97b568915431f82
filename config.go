package bus1

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/ailidani/bus1/internal/log"
)

// Config holds process-wide tunables: built-in defaults, overlaid with the
// fields of the optional JSON file named by the -config flag. No field has
// a flag of its own.
type Config struct {
	QuotaDefault   int64 `json:"quota_default"`
	ChanBufferSize int   `json:"chan_buffer_size"`
	HTTPAddr       string `json:"http_addr"`
	MonitorAddr    string `json:"monitor_addr"`
}

var (
	configPath = flag.String("config", "", "path to a JSON config file")

	config = Config{
		QuotaDefault:   4096,
		ChanBufferSize: 1024,
		HTTPAddr:       ":8080",
		MonitorAddr:    ":8081",
	}
)

// GetConfig returns the process-wide configuration.
func GetConfig() *Config { return &config }

// Load reads -config, if set, overlaying its fields onto the defaults.
func (c *Config) Load() {
	if *configPath == "" {
		return
	}
	f, err := os.Open(*configPath)
	if err != nil {
		log.Fatalf("bus1: failed to open config %q: %v", *configPath, err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(c); err != nil {
		log.Fatalf("bus1: failed to parse config %q: %v", *configPath, err)
	}
}

// Init parses flags and loads configuration. Call once at process start.
func Init() {
	flag.Parse()
	log.Setup()
	config.Load()
}
