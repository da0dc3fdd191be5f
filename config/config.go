// Package config loads the gateway's configuration surface from a YAML
// file: a thin struct plus one decode call, no validation business logic —
// a malformed port or missing device surfaces naturally when that
// component tries to open it.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Serial describes the shared daisy-chain bus.
type Serial struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// IPCamera describes one directly-addressable VISCA-over-IP camera.
type IPCamera struct {
	Name   string `yaml:"name"`
	Index  int    `yaml:"index"`
	IP     string `yaml:"ip"`
	Port   int    `yaml:"port"`
	Flavor string `yaml:"flavor"` // "ptz" or "sony"
}

// Server configures the UDP passthrough listeners.
type Server struct {
	BasePort int `yaml:"basePort"`
}

// Config is the top-level configuration document.
type Config struct {
	ViscaSerial    Serial     `yaml:"viscaSerial"`
	ViscaIPCameras []IPCamera `yaml:"viscaIPCameras"`
	ViscaServer    Server     `yaml:"viscaServer"`
}

// Load reads and decodes path into a Config. No field is validated here;
// callers discover a malformed port or missing device at open time.
func Load(path string) (Config, error) {
	cfg := Config{}
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}
