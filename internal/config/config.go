package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DIAMOND_SERVER_ADDR.
const EnvPrefix = "DIAMOND"

type Config struct {
	Log     LogConfig     `json:"log" mapstructure:"log"`
	Server  ServerConfig  `json:"server" mapstructure:"server"`
	CORS    CORSConfig    `json:"cors" mapstructure:"cors"`
	Data    DataConfig    `json:"data" mapstructure:"data"`
	Scoring ScoringConfig `json:"scoring" mapstructure:"scoring"`
}

type LogConfig struct {
	Level   string `json:"level" mapstructure:"level"`
	Console bool   `json:"console" mapstructure:"console"`
}

type ServerConfig struct {
	Addr        string `json:"addr" mapstructure:"addr"`
	MCPPath     string `json:"mcpPath" mapstructure:"mcpPath"`
	RequireAuth bool   `json:"requireAuth" mapstructure:"requireAuth"`
	AuthHeader  string `json:"authHeader" mapstructure:"authHeader"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `json:"apiKeyEnv" mapstructure:"apiKeyEnv"`
}

type CORSConfig struct {
	Origins []string `json:"origins" mapstructure:"origins"`
}

// DataConfig selects where the roster comes from.
type DataConfig struct {
	Source     string `json:"source" mapstructure:"source"` // file|http|sqlite
	Root       string `json:"root" mapstructure:"root"`
	BaseURL    string `json:"baseUrl" mapstructure:"baseUrl"`
	SQLitePath string `json:"sqlitePath" mapstructure:"sqlitePath"`
}

type ScoringConfig struct {
	AvgField string `json:"avgField" mapstructure:"avgField"` // avg|hits
	// RemoteURL, when set, sends scoring to a recalculation server.
	RemoteURL   string `json:"remoteUrl" mapstructure:"remoteUrl"`
	PresetsFile string `json:"presetsFile" mapstructure:"presetsFile"`
	Preset      string `json:"preset" mapstructure:"preset"`
}

// Data sources.
const (
	SourceFile   = "file"
	SourceHTTP   = "http"
	SourceSQLite = "sqlite"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", false)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mcpPath", "/mcp")
	v.SetDefault("server.requireAuth", false)
	v.SetDefault("server.authHeader", "X-API-Key")
	v.SetDefault("server.apiKeyEnv", "DIAMOND_API_KEY")

	v.SetDefault("cors.origins", []string{"http://localhost:3000"})

	v.SetDefault("data.source", SourceFile)
	v.SetDefault("data.root", "data")
	v.SetDefault("data.baseUrl", "http://localhost:5000/data")
	v.SetDefault("data.sqlitePath", "data/baseball_stats.db")

	v.SetDefault("scoring.avgField", "avg")
	v.SetDefault("scoring.remoteUrl", "")
	v.SetDefault("scoring.presetsFile", "")
	v.SetDefault("scoring.preset", "default")
}

// Load reads configuration from the JSON or YAML file at path (optional when
// empty), applies DIAMOND_* environment overrides and fills in defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	var errs []error
	switch c.Data.Source {
	case SourceFile, SourceHTTP, SourceSQLite:
	default:
		errs = append(errs, fmt.Errorf("data.source must be file, http or sqlite, got %q", c.Data.Source))
	}
	switch c.Scoring.AvgField {
	case "avg", "hits":
	default:
		errs = append(errs, fmt.Errorf("scoring.avgField must be avg or hits, got %q", c.Scoring.AvgField))
	}
	if !strings.HasPrefix(c.Server.MCPPath, "/") {
		errs = append(errs, fmt.Errorf("server.mcpPath must start with /, got %q", c.Server.MCPPath))
	}
	return errors.Join(errs...)
}
