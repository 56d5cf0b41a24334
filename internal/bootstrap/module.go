package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"solace/internal/bootstrap/config"
	"solace/internal/bootstrap/database"
	"solace/internal/bootstrap/logging"
	"solace/internal/domain/journal"
	eventsinfra "solace/internal/infrastructure/events"
	"solace/internal/infrastructure/inference"
	sqliterepo "solace/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "solace/internal/infrastructure/persistence/sqlite/uow"
	"solace/internal/ports"
	"solace/internal/usecase/pipeline"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewJournalRepository,
			fx.As(new(ports.JournalRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(provideEventBus),
	fx.Provide(provideTextModel),
	fx.Provide(provideProfile),
	fx.Provide(provideService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideEventBus(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (ports.EventBus, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	bus, err := eventsinfra.Connect(cfg.Events.URL)
	if err != nil {
		return nil, err
	}
	logging.Info(logCtx, "event bus connected", slog.String("url", cfg.Events.URL))

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return bus.Drain()
		},
	})

	return bus, nil
}

// provideTextModel returns a nil model when the inference provider is "none";
// the pipeline then runs entirely on deterministic fallbacks.
func provideTextModel(cfg config.Config) ports.TextModel {
	if cfg.Inference.Provider == "none" {
		return nil
	}
	return inference.NewOpenAIModel(cfg.Inference.APIKey, cfg.Inference.BaseURL)
}

func provideProfile(ctx context.Context, cfg config.Config) (pipeline.Profile, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	profile, err := pipeline.LoadProfile(cfg.Pipeline.ProfileFile)
	if err != nil {
		return pipeline.Profile{}, err
	}
	logging.Info(logCtx, "pipeline profile loaded",
		slog.Int("version", profile.Version),
		slog.String("profile_file", cfg.Pipeline.ProfileFile),
	)
	return profile, nil
}

func provideService(cfg config.Config, repo ports.JournalRepository, uow ports.UnitOfWork, bus ports.EventBus, model ports.TextModel, profile pipeline.Profile) (*pipeline.Service, error) {
	enforcement, err := journal.ParseEnforcementMode(cfg.Pipeline.Enforcement)
	if err != nil {
		return nil, err
	}

	return pipeline.NewService(repo, uow, bus, model, profile, pipeline.Options{
		ClassifierPath: cfg.Pipeline.ClassifierPath,
		Enforcement:    enforcement,
		AnalysisModel:  cfg.Inference.AnalysisModel,
		StoryModel:     cfg.Inference.StoryModel,
		EmbedModel:     cfg.Inference.EmbedModel,
	}), nil
}
