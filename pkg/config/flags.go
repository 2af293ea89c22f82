package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --model
// on both "genai chat" and "genai tokens").
type Flag struct {
	// Name is the long flag name (e.g. "model").
	Name string

	// Shorthand is the one-letter short flag (e.g. "m"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "chat.model").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagProvider      = "provider"
	FlagModel         = "model"
	FlagAPI           = "api"
	FlagSystem        = "system"
	FlagMaxTokens     = "max-tokens"
	FlagStorageDriver = "storage"
	FlagSQLite        = "sqlite"
	FlagPostgres      = "postgres"
	FlagPublisher     = "publisher"
	FlagKafkaBrokers  = "kafka-brokers"
	FlagKafkaTopic    = "kafka-topic"
	FlagOpenAIBaseURL = "openai-base-url"
	FlagGeminiBaseURL = "gemini-base-url"
)

// Flags is the registry shared by every genai command.
var Flags = FlagSet{
	FlagProvider:      {Name: "provider", Shorthand: "p", ViperKey: "chat.provider", Description: "LLM provider (openai, gemini); detected from the model when unset"},
	FlagModel:         {Name: "model", Shorthand: "m", ViperKey: "chat.model", Description: "Model name (e.g., gpt-4o-mini, gemini-2.5-flash)"},
	FlagAPI:           {Name: "api", ViperKey: "chat.api", Description: "OpenAI API to use (chat, responses)"},
	FlagSystem:        {Name: "system", Shorthand: "s", ViperKey: "chat.system", Description: "System prompt"},
	FlagMaxTokens:     {Name: "max-tokens", ViperKey: "chat.max_tokens", Description: "Maximum number of output tokens (0 for the provider default)"},
	FlagStorageDriver: {Name: "storage", ViperKey: "storage.driver", Description: "Storage for recorded streams (inmemory, sqlite, postgres)"},
	FlagSQLite:        {Name: "sqlite", ViperKey: "storage.sqlite_path", Description: "Path to the SQLite database for recorded streams"},
	FlagPostgres:      {Name: "postgres", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string for recorded streams"},
	FlagPublisher:     {Name: "publisher", ViperKey: "eventstream.publisher", Description: "Event publisher for recorded streams (nop, kafka)"},
	FlagKafkaBrokers:  {Name: "kafka-brokers", ViperKey: "eventstream.brokers", Description: "Comma separated Kafka broker addresses"},
	FlagKafkaTopic:    {Name: "kafka-topic", ViperKey: "eventstream.topic", Description: "Kafka topic for recorded stream events"},
	FlagOpenAIBaseURL: {Name: "openai-base-url", ViperKey: "openai.base_url", Description: "OpenAI API base URL"},
	FlagGeminiBaseURL: {Name: "gemini-base-url", ViperKey: "gemini.base_url", Description: "Gemini API base URL"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
