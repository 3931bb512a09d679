package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Extension ExtensionConfig `mapstructure:"extension"`
	Polling   PollingConfig   `mapstructure:"polling"`
	Websocket WebsocketConfig `mapstructure:"websocket"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

// ServerConfig configures the local status surface, not the Jupyter server.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// ExtensionConfig points at the sibling Jupyter server extension.
type ExtensionConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Namespace   string        `mapstructure:"namespace"`
	Token       string        `mapstructure:"token"`
	XSRFCookie  string        `mapstructure:"xsrf_cookie"`
	Timeout     time.Duration `mapstructure:"timeout"`
	InitialPath string        `mapstructure:"initial_path"`
}

type PollingConfig struct {
	CourseUserInterval    time.Duration `mapstructure:"course_user_interval"`
	AssignmentsInterval   time.Duration `mapstructure:"assignments_interval"`
	NotebookFilesInterval time.Duration `mapstructure:"notebook_files_interval"`
	RetryInterval         time.Duration `mapstructure:"retry_interval"`
}

type WebsocketConfig struct {
	// URL overrides the address derived from extension.base_url when set.
	URL              string        `mapstructure:"url"`
	ReconnectDelay   time.Duration `mapstructure:"reconnect_delay"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Pretty  bool   `mapstructure:"pretty"`
	NoColor bool   `mapstructure:"no_color"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.address", ":8890")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.idle_timeout", "60s")

	viper.SetDefault("extension.base_url", "http://localhost:8888")
	viper.SetDefault("extension.namespace", "eduhelx-jupyterlab-student")
	viper.SetDefault("extension.token", "")
	viper.SetDefault("extension.xsrf_cookie", "_xsrf")
	viper.SetDefault("extension.timeout", "30s")
	viper.SetDefault("extension.initial_path", "/")

	// The notebook index backs the most latency-sensitive UI, so it refreshes
	// fastest; course/user data changes rarely, so it refreshes slowest.
	viper.SetDefault("polling.course_user_interval", "30s")
	viper.SetDefault("polling.assignments_interval", "5s")
	viper.SetDefault("polling.notebook_files_interval", "2500ms")
	viper.SetDefault("polling.retry_interval", "1s")

	viper.SetDefault("websocket.url", "")
	viper.SetDefault("websocket.reconnect_delay", "3s")
	viper.SetDefault("websocket.handshake_timeout", "10s")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.pretty", false)
	viper.SetDefault("logging.no_color", false)

	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	viper.SetDefault("cors.allowed_headers", []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"})
	viper.SetDefault("cors.exposed_headers", []string{"Link"})
	viper.SetDefault("cors.allow_credentials", true)
	viper.SetDefault("cors.max_age", 300)
}
