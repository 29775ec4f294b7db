// Package config handles loading and storing the server's non-authoritative
// operational settings. The authoritative simulation parameters (port, map
// size, team rosters, tick frequency) come only from the CLI per spec §6 and
// are never hot-reloaded; this package covers logging and connection-floor
// knobs that are safe to change while the server is running.
package config

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds the server's non-authoritative operational settings.
type Config struct {
	LogLevel        string  `mapstructure:"LogLevel"`
	JoinRateLimit   float64 `mapstructure:"JoinRateLimit"` // per-IP join attempts/second
	JoinRateBurst   int     `mapstructure:"JoinRateBurst"`
	MaxTotalPlayers int     `mapstructure:"MaxTotalPlayers"` // global admission cap, independent of per-team slots
}

// C is the global configuration instance.
var C Config

// mu protects concurrent access to C during hot-reload.
var mu sync.RWMutex

var (
	watcherMu       sync.Mutex
	watcherActive   bool
	watcherCtx      context.Context
	watcherCancel   context.CancelFunc
	currentCallback ReloadCallback
)

// ReloadCallback is called when the configuration is hot-reloaded.
type ReloadCallback func(old, new Config)

// Load reads configuration from file and environment, populating C. A
// missing config file is not an error — the built-in defaults apply.
func Load() error {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.zappy")
	if path := os.Getenv("ZAPPY_CONFIG_PATH"); path != "" {
		viper.SetConfigFile(path)
	}

	viper.SetDefault("LogLevel", "info")
	viper.SetDefault("JoinRateLimit", 5.0)
	viper.SetDefault("JoinRateBurst", 10)
	viper.SetDefault("MaxTotalPlayers", 4096)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	return viper.Unmarshal(&C)
}

// Save writes the current configuration to file.
func Save() error {
	mu.RLock()
	defer mu.RUnlock()

	viper.Set("LogLevel", C.LogLevel)
	viper.Set("JoinRateLimit", C.JoinRateLimit)
	viper.Set("JoinRateBurst", C.JoinRateBurst)
	viper.Set("MaxTotalPlayers", C.MaxTotalPlayers)

	return viper.WriteConfig()
}

// Watch starts watching the config file for changes and calls the callback
// on reload. Returns a stop function to cancel watching. Only one watcher
// can be active at a time; calling Watch again replaces the callback but
// keeps the same underlying file watcher, to avoid viper race conditions.
func Watch(callback ReloadCallback) (stop func(), err error) {
	watcherMu.Lock()
	defer watcherMu.Unlock()

	if !watcherActive {
		ctx, cancel := context.WithCancel(context.Background())
		watcherCtx = ctx
		watcherCancel = cancel
		currentCallback = callback
		watcherActive = true

		viper.WatchConfig()
		viper.OnConfigChange(func(e fsnotify.Event) {
			watcherMu.Lock()
			cb := currentCallback
			ctx := watcherCtx
			watcherMu.Unlock()

			if ctx != nil {
				select {
				case <-ctx.Done():
					return
				default:
				}
			}

			mu.Lock()
			old := C
			var newCfg Config
			if err := viper.Unmarshal(&newCfg); err == nil {
				C = newCfg
				mu.Unlock()
				if cb != nil {
					cb(old, newCfg)
				}
			} else {
				mu.Unlock()
			}
		})
	} else {
		currentCallback = callback
	}

	return func() {
		watcherMu.Lock()
		defer watcherMu.Unlock()
		if watcherCancel != nil {
			watcherCancel()
			watcherCancel = nil
			watcherCtx = nil
		}
		watcherActive = false
		currentCallback = nil
	}, nil
}

// Get returns a copy of the current config safely.
func Get() Config {
	mu.RLock()
	defer mu.RUnlock()
	return C
}

// Set updates the config safely.
func Set(cfg Config) {
	mu.Lock()
	C = cfg
	mu.Unlock()
}
