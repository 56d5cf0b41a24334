package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"solace/internal/bootstrap/logging"
	"solace/internal/errs"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Events    EventsConfig    `mapstructure:"events"`
	Inference InferenceConfig `mapstructure:"inference"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	HTTP      HTTPConfig      `mapstructure:"http"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type EventsConfig struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}

type InferenceConfig struct {
	Provider      string `mapstructure:"provider"`
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url"`
	AnalysisModel string `mapstructure:"analysis_model"`
	StoryModel    string `mapstructure:"story_model"`
	EmbedModel    string `mapstructure:"embed_model"`
}

type PipelineConfig struct {
	ClassifierPath string `mapstructure:"classifier_path"`
	Enforcement    string `mapstructure:"enforcement"`
	ProfileFile    string `mapstructure:"profile_file"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SOLACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if cfg.Database.DSN == "" {
		return Config{}, errors.New("database.dsn is required")
	}
	switch strings.ToLower(cfg.Pipeline.Enforcement) {
	case "off", "soft", "hard":
	default:
		return Config{}, errors.New("pipeline.enforcement must be off, soft or hard")
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("classifier_path", cfg.Pipeline.ClassifierPath),
		slog.String("enforcement", cfg.Pipeline.Enforcement),
	)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "solace")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".solace/state/journal.sqlite")
	v.SetDefault("events.url", "nats://127.0.0.1:4222")
	v.SetDefault("events.queue", "pipeline")
	v.SetDefault("inference.provider", "none")
	v.SetDefault("inference.analysis_model", "gpt-4o")
	v.SetDefault("inference.story_model", "gpt-4o-mini")
	v.SetDefault("inference.embed_model", "text-embedding-3-small")
	v.SetDefault("pipeline.classifier_path", "llm")
	v.SetDefault("pipeline.enforcement", "off")
	v.SetDefault("pipeline.profile_file", "")
	v.SetDefault("http.addr", ":8087")
}
