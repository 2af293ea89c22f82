package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent genai configuration stored as config.toml
// in the .genai/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	OpenAI      ProviderConfig    `toml:"openai"`
	Gemini      ProviderConfig    `toml:"gemini"`
	Chat        ChatConfig        `toml:"chat"`
	Storage     StorageConfig     `toml:"storage"`
	EventStream EventStreamConfig `toml:"eventstream"`
	Log         LogConfig         `toml:"log"`
}

// ProviderConfig holds the connection settings of one provider API.
type ProviderConfig struct {
	APIKey  string `toml:"api_key,omitempty"`
	BaseURL string `toml:"base_url,omitempty"`

	// Timeout is a Go duration string such as "60s". It bounds whole
	// requests, and only the wait for the first byte of streams.
	Timeout string `toml:"timeout,omitempty"`
}

// TimeoutDuration parses Timeout. An empty timeout is zero.
func (p ProviderConfig) TimeoutDuration() (time.Duration, error) {
	if p.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", p.Timeout, err)
	}
	return d, nil
}

// ChatConfig holds the defaults of "genai chat".
type ChatConfig struct {
	Provider  string `toml:"provider,omitempty"`
	Model     string `toml:"model,omitempty"`
	API       string `toml:"api,omitempty"`
	System    string `toml:"system,omitempty"`
	MaxTokens uint   `toml:"max_tokens,omitempty"`
}

// StorageConfig selects where recorded streams are stored.
type StorageConfig struct {
	// Driver is "inmemory", "sqlite" or "postgres".
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// EventStreamConfig selects where recorded stream events are published.
type EventStreamConfig struct {
	// Publisher is "nop" or "kafka".
	Publisher string `toml:"publisher,omitempty"`
	Brokers   string `toml:"brokers,omitempty"`
	Topic     string `toml:"topic,omitempty"`
	ClientID  string `toml:"client_id,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Debug bool   `toml:"debug,omitempty"`
	JSON  bool   `toml:"json,omitempty"`
	File  string `toml:"file,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get    func(c *Config) string
	set    func(c *Config, v string) error
	secret bool
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func secretKey(field func(c *Config) *string) configKeyInfo {
	info := stringKey(field)
	info.secret = true
	return info
}

func boolKey(name string, field func(c *Config) *bool) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = b
			return nil
		},
	}
}

func durationKey(name string, field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = v
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"openai.api_key":  secretKey(func(c *Config) *string { return &c.OpenAI.APIKey }),
	"openai.base_url": stringKey(func(c *Config) *string { return &c.OpenAI.BaseURL }),
	"openai.timeout":  durationKey("openai.timeout", func(c *Config) *string { return &c.OpenAI.Timeout }),
	"gemini.api_key":  secretKey(func(c *Config) *string { return &c.Gemini.APIKey }),
	"gemini.base_url": stringKey(func(c *Config) *string { return &c.Gemini.BaseURL }),
	"gemini.timeout":  durationKey("gemini.timeout", func(c *Config) *string { return &c.Gemini.Timeout }),

	"chat.provider": stringKey(func(c *Config) *string { return &c.Chat.Provider }),
	"chat.model":    stringKey(func(c *Config) *string { return &c.Chat.Model }),
	"chat.api":      stringKey(func(c *Config) *string { return &c.Chat.API }),
	"chat.system":   stringKey(func(c *Config) *string { return &c.Chat.System }),
	"chat.max_tokens": {
		get: func(c *Config) string {
			if c.Chat.MaxTokens == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Chat.MaxTokens), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid value for chat.max_tokens: %w", err)
			}
			c.Chat.MaxTokens = uint(n)
			return nil
		},
	},

	"storage.driver":       stringKey(func(c *Config) *string { return &c.Storage.Driver }),
	"storage.sqlite_path":  stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"storage.postgres_dsn": secretKey(func(c *Config) *string { return &c.Storage.PostgresDSN }),

	"eventstream.publisher": stringKey(func(c *Config) *string { return &c.EventStream.Publisher }),
	"eventstream.brokers":   stringKey(func(c *Config) *string { return &c.EventStream.Brokers }),
	"eventstream.topic":     stringKey(func(c *Config) *string { return &c.EventStream.Topic }),
	"eventstream.client_id": stringKey(func(c *Config) *string { return &c.EventStream.ClientID }),

	"log.debug": boolKey("log.debug", func(c *Config) *bool { return &c.Log.Debug }),
	"log.json":  boolKey("log.json", func(c *Config) *bool { return &c.Log.JSON }),
	"log.file":  stringKey(func(c *Config) *string { return &c.Log.File }),
}
