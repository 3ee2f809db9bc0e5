package config

// Chat definition chat_service YAML structure
type Chat struct {
	Port     string         `mapstructure:"port"`
	Identity IdentityConfig `mapstructure:"identity"`
	MongoSQL DatabaseConfig `mapstructure:"mongo"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	History  HistoryConfig  `mapstructure:"history"`
}

// IdentityConfig controls how the websocket handshake identity is resolved.
// AllowUnverified reproduces the reference behavior of trusting a
// client-supplied user id outright; leave it off to require a valid token.
type IdentityConfig struct {
	AllowUnverified bool   `mapstructure:"allow_unverified"`
	JWTSecret       string `mapstructure:"jwt_secret"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	RedisDB int `mapstructure:"redis_db"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// KafkaConfig definition kafka event stream setting
type KafkaConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	RetryInterval int      `mapstructure:"retry_interval"`
	RetryCount    int      `mapstructure:"retry_count"`
}

// HistoryConfig definition chat history writer setting
type HistoryConfig struct {
	QueueSize   int `mapstructure:"queue_size"`
	RecentLimit int `mapstructure:"recent_limit"`
}
