// Package config assembles the server's runtime configuration from
// environment variables, with documented defaults per SPEC_FULL.md §6,
// optionally overridden by command-line flags.
//
// Grounded on the teacher's internal/app.Run env-var parse-and-clamp
// pattern (KEYFRAME_INTERVAL_TICKS), generalized to every tunable the duel
// server needs; flag overrides follow the layering convention the pack
// uses spf13/pflag for (webitel-im-delivery-service, AKJUS-bsc-erigon):
// flags win when set, otherwise the environment, otherwise the documented
// default.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

// Config is the fully-resolved set of server tunables.
type Config struct {
	Port                  int
	ForfeitTimeout        time.Duration
	RoomTTL               time.Duration
	CatalogBaseURL        string
	CatalogTimeout        time.Duration
	CatalogMaxRetry       time.Duration
	ActionLogCapacity     int
	EnablePprofTrace      bool
}

// Default returns the documented environment defaults from SPEC_FULL.md §6.
func Default() Config {
	return Config{
		Port:              8080,
		ForfeitTimeout:    60 * time.Second,
		RoomTTL:           60 * time.Minute,
		CatalogBaseURL:    "http://localhost:4000",
		CatalogTimeout:    5 * time.Second,
		CatalogMaxRetry:   15 * time.Second,
		ActionLogCapacity: 200,
		EnablePprofTrace:  false,
	}
}

// FromEnv starts from Default and overrides each field whose environment
// variable is set and parses cleanly; malformed values are logged by the
// caller (via the returned warnings) and the default is kept, mirroring
// the teacher's "log and keep default" handling of KEYFRAME_INTERVAL_TICKS.
func FromEnv() (Config, []string) {
	cfg := Default()
	var warnings []string

	if raw, ok := os.LookupEnv("PORT"); ok {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.Port = v
		} else {
			warnings = append(warnings, "invalid PORT="+raw)
		}
	}
	if raw, ok := os.LookupEnv("FORFEIT_TIMEOUT_SECONDS"); ok {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.ForfeitTimeout = time.Duration(v) * time.Second
		} else {
			warnings = append(warnings, "invalid FORFEIT_TIMEOUT_SECONDS="+raw)
		}
	}
	if raw, ok := os.LookupEnv("ROOM_TTL_MINUTES"); ok {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.RoomTTL = time.Duration(v) * time.Minute
		} else {
			warnings = append(warnings, "invalid ROOM_TTL_MINUTES="+raw)
		}
	}
	if raw, ok := os.LookupEnv("CATALOG_BASE_URL"); ok && raw != "" {
		cfg.CatalogBaseURL = raw
	}
	if raw, ok := os.LookupEnv("CATALOG_TIMEOUT_SECONDS"); ok {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.CatalogTimeout = time.Duration(v) * time.Second
		} else {
			warnings = append(warnings, "invalid CATALOG_TIMEOUT_SECONDS="+raw)
		}
	}
	if raw, ok := os.LookupEnv("ACTION_LOG_CAPACITY"); ok {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.ActionLogCapacity = v
		} else {
			warnings = append(warnings, "invalid ACTION_LOG_CAPACITY="+raw)
		}
	}
	if raw, ok := os.LookupEnv("ENABLE_PPROF_TRACE"); ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			cfg.EnablePprofTrace = v
		} else {
			warnings = append(warnings, "invalid ENABLE_PPROF_TRACE="+raw)
		}
	}

	return cfg, warnings
}

// BindFlags registers pflag overrides for every Config field onto fs,
// layered over cfg (the env-resolved configuration): a flag wins only if
// the caller explicitly passed it on the command line.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Port, "port", cfg.Port, "listen port")
	fs.DurationVar(&cfg.ForfeitTimeout, "forfeit-timeout", cfg.ForfeitTimeout, "disconnect forfeit timer")
	fs.DurationVar(&cfg.RoomTTL, "room-ttl", cfg.RoomTTL, "idle room time-to-live")
	fs.StringVar(&cfg.CatalogBaseURL, "catalog-base-url", cfg.CatalogBaseURL, "card catalog collaborator base URL")
	fs.DurationVar(&cfg.CatalogTimeout, "catalog-timeout", cfg.CatalogTimeout, "per-request catalog timeout")
	fs.DurationVar(&cfg.CatalogMaxRetry, "catalog-max-retry", cfg.CatalogMaxRetry, "total catalog retry budget")
	fs.IntVar(&cfg.ActionLogCapacity, "action-log-capacity", cfg.ActionLogCapacity, "bounded action log ring buffer size")
	fs.BoolVar(&cfg.EnablePprofTrace, "enable-pprof-trace", cfg.EnablePprofTrace, "enable the /debug/pprof/trace route")
}
