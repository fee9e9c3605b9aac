package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/panasenco/plsql/internal/locale"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultClientCommand = "sql -S"
	DefaultConnectEnvVar = "ORACLE_CONNECTION_STRING"
)

type Environment struct {
	Host     string `toml:"host"`
	Port     uint16 `toml:"port"`
	Service  string `toml:"service"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Disabled bool
}

type Connection struct {
	Host        string `toml:"host"`
	Port        uint16 `toml:"port"`
	Service     string `toml:"service"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	Environment map[string]*Environment
}

type LoggerConfigs struct {
	ConsoleLevel  string `toml:"console_level"`
	ConsoleOutput string `toml:"console_output"`
	FileLevel     string `toml:"file_level"`
	FileOutput    string `toml:"file_output"`
}

type PathConfigs struct {
	Connections string `toml:"connections"`
}

type CacheConfig struct {
	UseCache   bool   `toml:"use_cache"`
	TimeToLive uint16 `toml:"time_to_live"`
	MaxAge     time.Duration
}

type Config struct {
	Cache         CacheConfig            `toml:"cache"`
	Locale        string                 `toml:"locale"`
	ClientCommand string                 `toml:"client_command"`
	ConnectEnvVar string                 `toml:"connect_env_var"`
	MaxWorkers    uint8                  `toml:"max_workers"`
	Timeout       uint16                 `toml:"timeout"`
	Paths         PathConfigs            `toml:"paths"`
	Connections   map[string]*Connection `toml:"connections"`
	Logging       LoggerConfigs          `toml:"logger"`
	ConnColumn    string                 `toml:"connection_column_name"`
}

func NewConfig() *Config {
	return &Config{
		ClientCommand: DefaultClientCommand,
		ConnectEnvVar: DefaultConnectEnvVar,
		MaxWorkers:    4,
		ConnColumn:    "CONNECTION",
		Logging: LoggerConfigs{
			ConsoleLevel:  "info",
			ConsoleOutput: "stderr",
		},
	}
}

// Load reads the config TOML at path. A missing file is not an error: the
// tool works with nothing but a connection string.
func Load(path string) (*Config, error) {
	conf := NewConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return conf, nil
	}

	_, err := toml.DecodeFile(path, conf)
	if err != nil {
		return nil, fmt.Errorf("error loading config TOML: %w", err)
	}
	conf.Cache.MaxAge = time.Duration(conf.Cache.TimeToLive) * time.Second

	if err := conf.loadConnections(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *Config) GetConnection(name string) *Connection {
	return c.Connections[name]
}

func (c *Config) GetConnections() map[string]*Connection {
	return c.Connections
}

// Resolve fills an environment's blanks from the connection-level defaults
// and disables it when no host can be determined.
func (c *Connection) Resolve(env *Environment) {
	if env.Host == "" {
		env.Host = c.Host
	}
	if env.Host == "" {
		slog.Warn(locale.L.Logs.NoHostSpecified)
		env.Disabled = true
		return
	}
	if env.Service == "" {
		env.Service = c.Service
	}
	if env.Port == 0 {
		env.Port = c.Port
	}
	if env.Username == "" {
		env.Username = c.Username
	}
	if env.Password == "" {
		env.Password = c.Password
	}
	env.Password = resolvePassword(env.Password)
}

// ConnectString assembles the EZConnect string the client expects for the
// given environment name. Returns "" when the environment is missing or
// disabled.
func (c *Connection) ConnectString(environment string) string {
	env, ok := c.Environment[environment]
	if !ok || env.Disabled {
		return ""
	}

	port := env.Port
	if port == 0 {
		port = 1521
	}

	return fmt.Sprintf("%s/%s@//%s:%d/%s",
		env.Username, env.Password, env.Host, port, env.Service)
}

func (c *Config) loadConnections() error {
	if c.Paths.Connections == "" {
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error loading .env file: %w", err)
	}

	var connections map[string]*Connection

	_, err := toml.DecodeFile(c.Paths.Connections, &connections)
	if err != nil {
		return fmt.Errorf("error loading connections TOML: %w", err)
	}

	for _, conn := range connections {
		conn.Password = resolvePassword(conn.Password)

		for _, env := range conn.Environment {
			conn.Resolve(env)
		}
	}

	c.Connections = connections

	return nil
}

// resolvePassword expands the ${ENV_VAR} indirection used to keep secrets
// out of the connections file.
func resolvePassword(password string) string {
	if strings.HasPrefix(password, "${") && strings.HasSuffix(password, "}") {
		envVar := strings.TrimPrefix(strings.TrimSuffix(password, "}"), "${")
		return os.Getenv(envVar)
	}
	return password
}
