// Package config handles loading the talkback configuration.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultPath is the config file location relative to the home directory.
const DefaultPath = ".claude/talkback.json"

// Config is the root configuration for talkback.
type Config struct {
	Enabled bool   `mapstructure:"enabled"`
	Engine  string `mapstructure:"engine"` // "auto", "edge", "kokoro", "sapi", "espeak"

	// Edge voice parameters.
	Voice  string `mapstructure:"voice"`
	Rate   string `mapstructure:"rate"`   // e.g. "+10%"
	Volume string `mapstructure:"volume"` // e.g. "+0%"

	// MaxSpeakLength bounds spoken text for the non-streaming engines.
	MaxSpeakLength int `mapstructure:"max_speak_length"`

	FallbackToSAPI     bool `mapstructure:"fallback_to_sapi"`
	UseStreamingPlayer bool `mapstructure:"use_streaming_player"`

	Kokoro KokoroConfig `mapstructure:"kokoro"`

	EspeakRate int `mapstructure:"espeak_rate"` // words per minute
	SAPIRate   int `mapstructure:"sapi_rate"`   // -10..10

	LogFile string `mapstructure:"log_file"`

	// Hook behavior.
	SpeakResponses   bool     `mapstructure:"speak_responses"`
	SpeakThinking    bool     `mapstructure:"speak_thinking"`
	SpeakToolResults bool     `mapstructure:"speak_tool_results"`
	ToolsToAnnounce  []string `mapstructure:"tools_to_announce"`
}

// KokoroConfig holds local Kokoro TTS server settings.
type KokoroConfig struct {
	URL   string `mapstructure:"url"`
	Voice string `mapstructure:"voice"`
}

// Load reads the configuration from file, environment variables, and
// defaults. If configFile is empty the TALKBACK_CONFIG env var is consulted,
// then ~/.claude/talkback.json. A missing or malformed file is never fatal:
// hooks must keep working on defaults alone.
func Load(configFile string) *Config {
	v := viper.New()

	v.SetDefault("enabled", true)
	v.SetDefault("engine", "auto")
	v.SetDefault("voice", "en-US-AriaNeural")
	v.SetDefault("rate", "+10%")
	v.SetDefault("volume", "+0%")
	v.SetDefault("max_speak_length", 500)
	v.SetDefault("fallback_to_sapi", true)
	v.SetDefault("use_streaming_player", true)
	v.SetDefault("kokoro.url", "http://localhost:8102")
	v.SetDefault("kokoro.voice", "af_nova")
	v.SetDefault("espeak_rate", 175)
	v.SetDefault("sapi_rate", 2)
	v.SetDefault("log_file", "~/.claude/talkback.log")
	v.SetDefault("speak_responses", true)
	v.SetDefault("speak_thinking", false)
	v.SetDefault("speak_tool_results", false)
	v.SetDefault("tools_to_announce", []string{"Bash", "Write", "Edit"})

	if configFile == "" {
		configFile = os.Getenv("TALKBACK_CONFIG")
	}
	if configFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configFile = filepath.Join(home, DefaultPath)
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("json")
	}

	// Environment variables: TALKBACK_ENABLED, TALKBACK_ENGINE, etc.
	v.SetEnvPrefix("TALKBACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := defaults(v)
	if configFile == "" {
		return cfg
	}

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				slog.Warn("ignoring unreadable config file", "path", configFile, "error", err)
			}
		}
		return cfg
	}

	var loaded Config
	if err := v.Unmarshal(&loaded); err != nil {
		slog.Warn("ignoring malformed config file", "path", configFile, "error", err)
		return cfg
	}
	return &loaded
}

// defaults unmarshals the registered defaults only, shielding the caller
// from a half-applied malformed file.
func defaults(v *viper.Viper) *Config {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Defaults are statically well-formed; this cannot happen.
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &cfg
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// SetupLogging points the global slog logger at the configured log file.
// Hooks share stdout with the calling process, so logs never go there; if
// the file cannot be opened, logging is discarded rather than leaking into
// the hook's output stream.
func SetupLogging(logFile string) {
	var w io.Writer = io.Discard
	if logFile != "" {
		path := ExpandHome(logFile)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				w = f
			}
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})))
}
