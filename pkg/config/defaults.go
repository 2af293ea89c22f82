package config

const (
	defaultChatProvider = "openai"
	defaultChatAPI      = "chat"
	defaultTimeout      = "60s"

	defaultStorageDriver = "sqlite"

	defaultPublisher = "nop"
	defaultTopic     = "genai.stream.records"
	defaultClientID  = "genai"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		OpenAI: ProviderConfig{
			Timeout: defaultTimeout,
		},
		Gemini: ProviderConfig{
			Timeout: defaultTimeout,
		},
		Chat: ChatConfig{
			Provider: defaultChatProvider,
			API:      defaultChatAPI,
		},
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		EventStream: EventStreamConfig{
			Publisher: defaultPublisher,
			Topic:     defaultTopic,
			ClientID:  defaultClientID,
		},
	}
}
