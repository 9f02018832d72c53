// Package config provides configuration management for interactbot.
// It uses Viper for loading with support for:
// - Multiple formats (JSON, YAML, TOML)
// - Environment variables, including a .env file
// - Default values
package config

// Config represents the complete interactbot configuration.
type Config struct {
	Application ApplicationConfig `mapstructure:"application" json:"application"`
	Server      ServerConfig      `mapstructure:"server" json:"server"`
	API         APIConfig         `mapstructure:"api" json:"api"`
	Commands    CommandsConfig    `mapstructure:"commands" json:"commands"`
	Guard       GuardConfig       `mapstructure:"guard" json:"guard"`
	Redis       RedisConfig       `mapstructure:"redis" json:"redis"`
	Logger      LoggerConfig      `mapstructure:"logger" json:"logger"`
}

// ApplicationConfig holds the platform application credentials.
type ApplicationConfig struct {
	ID     string `mapstructure:"id" json:"id"`
	Secret string `mapstructure:"secret" json:"secret"`
	// PublicKey is the hex-encoded ed25519 key used to verify inbound requests.
	PublicKey string `mapstructure:"public_key" json:"public_key"`
}

// ServerConfig configures the inbound interactions endpoint.
type ServerConfig struct {
	Host               string `mapstructure:"host" json:"host"`
	Port               int    `mapstructure:"port" json:"port"`
	Path               string `mapstructure:"path" json:"path"`
	ReadTimeoutSeconds int    `mapstructure:"read_timeout_seconds" json:"read_timeout_seconds"`
	MaxBodyBytes       int64  `mapstructure:"max_body_bytes" json:"max_body_bytes"`
}

// APIConfig configures outbound platform calls.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url" json:"base_url"`
	Version        string `mapstructure:"version" json:"version"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" json:"timeout_seconds"`
}

// CommandsConfig controls command registration with the platform.
type CommandsConfig struct {
	PushOnStart bool `mapstructure:"push_on_start" json:"push_on_start"`
	// GuildID scopes pushed commands to one guild. Empty pushes global commands.
	GuildID string `mapstructure:"guild_id" json:"guild_id"`
}

// GuardConfig configures the one-shot response guard.
type GuardConfig struct {
	Backend    string `mapstructure:"backend" json:"backend"` // memory, redis or none
	TTLMinutes int    `mapstructure:"ttl_minutes" json:"ttl_minutes"`
	Prefix     string `mapstructure:"prefix" json:"prefix"`
}

// RedisConfig is shared by every redis-backed component.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" json:"addr"`
	Password string `mapstructure:"password" json:"password"`
	DB       int    `mapstructure:"db" json:"db"`
}

// LoggerConfig configures logging.
type LoggerConfig struct {
	Level       string `mapstructure:"level" json:"level"`
	OutputPath  string `mapstructure:"output_path" json:"output_path"`
	MaxSize     int    `mapstructure:"max_size" json:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" json:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" json:"max_age"`
	Compress    bool   `mapstructure:"compress" json:"compress"`
	Development bool   `mapstructure:"development" json:"development"`
}

// DefaultConfig returns the default configuration. Credentials are left empty.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               3286,
			Path:               "/interactions",
			ReadTimeoutSeconds: 10,
			MaxBodyBytes:       1 << 20,
		},
		API: APIConfig{
			BaseURL:        "https://discord.com/api",
			Version:        "v10",
			TimeoutSeconds: 10,
		},
		Guard: GuardConfig{
			Backend:    "memory",
			TTLMinutes: 15,
			Prefix:     "interactbot:claim:",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Logger: LoggerConfig{
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}
}

// settings flattens cfg into viper keys. The key set drives defaults and env bindings.
func settings(cfg *Config) map[string]any {
	return map[string]any{
		"application.id":              cfg.Application.ID,
		"application.secret":          cfg.Application.Secret,
		"application.public_key":      cfg.Application.PublicKey,
		"server.host":                 cfg.Server.Host,
		"server.port":                 cfg.Server.Port,
		"server.path":                 cfg.Server.Path,
		"server.read_timeout_seconds": cfg.Server.ReadTimeoutSeconds,
		"server.max_body_bytes":       cfg.Server.MaxBodyBytes,
		"api.base_url":                cfg.API.BaseURL,
		"api.version":                 cfg.API.Version,
		"api.timeout_seconds":         cfg.API.TimeoutSeconds,
		"commands.push_on_start":      cfg.Commands.PushOnStart,
		"commands.guild_id":           cfg.Commands.GuildID,
		"guard.backend":               cfg.Guard.Backend,
		"guard.ttl_minutes":           cfg.Guard.TTLMinutes,
		"guard.prefix":                cfg.Guard.Prefix,
		"redis.addr":                  cfg.Redis.Addr,
		"redis.password":              cfg.Redis.Password,
		"redis.db":                    cfg.Redis.DB,
		"logger.level":                cfg.Logger.Level,
		"logger.output_path":          cfg.Logger.OutputPath,
		"logger.max_size":             cfg.Logger.MaxSize,
		"logger.max_backups":          cfg.Logger.MaxBackups,
		"logger.max_age":              cfg.Logger.MaxAge,
		"logger.compress":             cfg.Logger.Compress,
		"logger.development":          cfg.Logger.Development,
	}
}

// legacyEnv lists unprefixed variable names accepted alongside the INTERACTBOT_ ones.
var legacyEnv = map[string]string{
	"application.id":         "APPLICATION_ID",
	"application.secret":     "APPLICATION_SECRET",
	"application.public_key": "APPLICATION_PUBLIC_KEY",
}
