package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/genai/pkg/dotdir"
)

// envPrefix is the prefix of every genai environment variable.
const envPrefix = "GENAI"

// vendorEnv lists the conventional provider variables read when the
// GENAI_-prefixed variable is unset.
var vendorEnv = map[string]string{
	"openai.api_key": "OPENAI_API_KEY",
	"gemini.api_key": "GEMINI_API_KEY",
}

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the GENAI_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (GENAI_CHAT_MODEL, GENAI_OPENAI_API_KEY, etc.)
//  3. Vendor environment variables (OPENAI_API_KEY, GEMINI_API_KEY)
//  4. config.toml file values
//  5. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: GENAI_CHAT_MODEL, GENAI_STORAGE_SQLITE_PATH, etc.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, vendor := range vendorEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, vendor); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	return v, nil
}

// FromViper decodes the effective configuration held by v.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{Version: v.GetInt("version")}
	for key, info := range configKeys {
		if !v.IsSet(key) {
			continue
		}
		// Values come from typed defaults, TOML or strings; a value that
		// does not parse keeps the zero value.
		_ = info.set(cfg, v.GetString(key))
	}
	applyDefaults(cfg)
	return cfg
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Providers
	v.SetDefault("openai.timeout", d.OpenAI.Timeout)
	v.SetDefault("gemini.timeout", d.Gemini.Timeout)

	// Chat
	v.SetDefault("chat.provider", d.Chat.Provider)
	v.SetDefault("chat.model", d.Chat.Model)
	v.SetDefault("chat.api", d.Chat.API)
	v.SetDefault("chat.max_tokens", d.Chat.MaxTokens)

	// Storage
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)

	// Event stream
	v.SetDefault("eventstream.publisher", d.EventStream.Publisher)
	v.SetDefault("eventstream.topic", d.EventStream.Topic)
	v.SetDefault("eventstream.client_id", d.EventStream.ClientID)

	// Log
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.json", d.Log.JSON)
}
