package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	JWTSecret   string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string `mapstructure:"jwt_audience" yaml:"jwt_audience"`

	// ReapInterval is how often the room reaper scans for deletable rooms.
	ReapInterval time.Duration `mapstructure:"reap_interval" yaml:"reap_interval"`
	// EmptyRoomTTL is how long a room may stay empty before it is deleted.
	EmptyRoomTTL time.Duration `mapstructure:"empty_room_ttl" yaml:"empty_room_ttl"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "whisperspace.db",
		LogLevel:          "info",
		JWTSecret:         "change-me",
		JWTIssuer:         "whisperspace",
		JWTAudience:       "whisperspace-clients",
		ReapInterval:      15 * time.Minute,
		EmptyRoomTTL:      time.Hour,
	}
}
