// Package config loads runtime settings from .env, the environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read through viper.
const EnvPrefix = "FINSIGHT"

// Config holds settings shared by the API server and the CLI.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Gemini   GeminiConfig
	GCS      GCSConfig
	BigQuery BigQueryConfig
	Notion   NotionConfig
	Jobs     JobsConfig
}

type ServerConfig struct {
	Port string
}

type LogConfig struct {
	Level  string
	Format string
}

type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
}

// GCSConfig enables the statement archive when Bucket is set.
type GCSConfig struct {
	Bucket string
}

// BigQueryConfig enables the model output log when Project is set.
type BigQueryConfig struct {
	Project string
	Dataset string
}

type NotionConfig struct {
	Token      string
	DatabaseID string
}

type JobsConfig struct {
	Buffer  int
	Workers int
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.temperature", 0.2)
	v.SetDefault("bigquery.dataset", "finance")
	v.SetDefault("jobs.buffer", 100)
	v.SetDefault("jobs.workers", 5)
}

// New returns a viper instance wired for FINSIGHT_ environment variables.
// The API key also answers to the bare GEMINI_API_KEY and API_KEY names.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("gemini.api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY", "API_KEY")
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")
	_ = v.BindEnv("bigquery.project", EnvPrefix+"_BIGQUERY_PROJECT", "GOOGLE_CLOUD_PROJECT")
	return v
}

// Load reads .env (if present), then configFile (if non-empty), and decodes
// the result.
func Load(configFile string) (*Config, error) {
	return LoadInto(New(), configFile)
}

// LoadInto is Load for a viper instance that already has flags bound to it.
func LoadInto(v *viper.Viper, configFile string) (*Config, error) {
	// Variables already set in the process win over .env.
	_ = godotenv.Load()

	if err := ReadFile(v, configFile); err != nil {
		return nil, err
	}
	return FromViper(v), nil
}

// ReadFile merges a YAML config file into v. An empty path searches the
// working directory for finsight.yaml and ignores its absence.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("finsight")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("ReadFile: read config: %w", err)
	}
	return nil
}

// FromViper decodes every known key from v.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Server: ServerConfig{Port: v.GetString("server.port")},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Gemini: GeminiConfig{
			APIKey:      v.GetString("gemini.api_key"),
			Model:       v.GetString("gemini.model"),
			Temperature: float32(v.GetFloat64("gemini.temperature")),
		},
		GCS: GCSConfig{Bucket: v.GetString("gcs.bucket")},
		BigQuery: BigQueryConfig{
			Project: v.GetString("bigquery.project"),
			Dataset: v.GetString("bigquery.dataset"),
		},
		Notion: NotionConfig{
			Token:      v.GetString("notion.token"),
			DatabaseID: v.GetString("notion.database_id"),
		},
		Jobs: JobsConfig{
			Buffer:  v.GetInt("jobs.buffer"),
			Workers: v.GetInt("jobs.workers"),
		},
	}
	if cfg.Jobs.Workers <= 0 {
		cfg.Jobs.Workers = 1
	}
	if cfg.Jobs.Buffer < 0 {
		cfg.Jobs.Buffer = 0
	}
	return cfg
}
