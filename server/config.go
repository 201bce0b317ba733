package main

import (
	"os"
	"strconv"
	"strings"
)

type config struct {
	DatabaseURL string
	Port        string
	AutoMigrate bool
	DataDir     string
	Filter      string
	Workers     int
	FailFast    bool
	Verbose     bool
	Color       bool
}

func loadConfig() config {
	return config{
		DatabaseURL: getenv("DATABASE_URL", ""),
		Port:        getenv("PORT", "8080"),
		AutoMigrate: asBool(os.Getenv("AUTO_MIGRATE")),
		DataDir:     getenv("BRIDGE_TEST_DATA_DIR", "parsed-games"),
		Filter:      os.Getenv("REPLAY_FILTER"),
		Workers:     atoiDef(os.Getenv("REPLAY_WORKERS"), 0),
		FailFast:    asBool(os.Getenv("FAIL_FAST")),
		Verbose:     asBool(os.Getenv("VERBOSE")),
		Color:       os.Getenv("NO_COLOR") == "" && strings.TrimSpace(os.Getenv("USE_COLOR")) != "0",
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func atoiDef(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
func asBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
