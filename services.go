package main

import (
	"context"
	"log"

	"github.com/nlysenko/datahub-gateway/auth/account"
	"github.com/nlysenko/datahub-gateway/auth/handshake"
	"github.com/nlysenko/datahub-gateway/auth/oauth"
	"github.com/nlysenko/datahub-gateway/auth/state"
	"github.com/nlysenko/datahub-gateway/logging"
	"github.com/nlysenko/datahub-gateway/s3watch"
	"github.com/nlysenko/datahub-gateway/services"
	"github.com/nlysenko/datahub-gateway/store"
)

type Stores struct {
	users      store.UserStore
	settings   *store.DynamoDbSettingsStore
	ingestions store.IngestionStore
	states     *state.RedisStore
}

type Services struct {
	Auth      services.AuthService
	Handshake *handshake.Controller
	Watcher   *s3watch.Watcher

	Stores *Stores
}

type Shutdowner interface {
	Shutdown(context.Context) error
}

func BuildServices(app *App) *Services {
	cfg := app.Config

	usrStore := store.NewUserStore(app.DynamoDB, cfg.DynamoDBConfig.UsersTableName)
	settingsStore := store.NewSettingsStore(app.DynamoDB, cfg.DynamoDBConfig.SettingsTableName, cfg.RegistrationPolicy)
	ingestStore := store.NewIngestionStore(app.DynamoDB, cfg.DynamoDBConfig.IngestionsTableName)
	stateStore := state.NewRedisStore(app.Redis, cfg.OAuthConfig.StateTokenTTL)

	resolver := account.NewResolver(usrStore, settingsStore)

	controller := handshake.NewController(stateStore, resolver)
	controller.RegisterProvider(
		oauth.WithBreaker(oauth.NewGoogleProvider(cfg.OAuthConfig.Google, cfg.OAuthConfig.CallbackBase)),
		cfg.OAuthConfig.Google.Enabled,
	)
	controller.RegisterProvider(
		oauth.WithBreaker(oauth.NewGithubProvider(cfg.OAuthConfig.Github, cfg.OAuthConfig.CallbackBase)),
		cfg.OAuthConfig.Github.Enabled,
	)

	authSvc := services.NewAuthServiceImpl(usrStore, cfg.JWTConfig.SecretKey, cfg.JWTConfig.RefreshSecretKey)

	var watcher *s3watch.Watcher
	if cfg.S3WatchConfig.Enabled {
		ingestor := s3watch.NewRecordingIngestor(ingestStore, cfg.S3WatchConfig.Bucket, cfg.S3WatchConfig.FolderID)
		watcher = s3watch.NewWatcher(
			app.S3,
			ingestor,
			logging.CreateLogger(cfg.Env),
			cfg.S3WatchConfig.Bucket,
			cfg.S3WatchConfig.BasePath,
			cfg.S3WatchConfig.Interval,
		)
	}

	return &Services{
		Auth:      authSvc,
		Handshake: controller,
		Watcher:   watcher,

		Stores: &Stores{
			users:      usrStore,
			settings:   settingsStore,
			ingestions: ingestStore,
			states:     stateStore,
		},
	}
}

func (s *Services) Shutdown(ctx context.Context) error {
	log.Println("shutting down services")

	if s.Stores != nil {
		if err := s.Stores.Shutdown(ctx); err != nil {
			log.Printf("stores shutdown error: %v", err)
		}
	}

	log.Println("services shutdown complete")
	return nil
}

func (s *Stores) Shutdown(ctx context.Context) error {
	log.Println("shutting down stores")

	shutdownIfPossible := func(name string, v any) {
		if sh, ok := v.(Shutdowner); ok {
			if err := sh.Shutdown(ctx); err != nil {
				log.Printf("%s store shutdown error: %v", name, err)
			}
		}
	}

	shutdownIfPossible("users", s.users)
	shutdownIfPossible("settings", s.settings)
	shutdownIfPossible("ingestions", s.ingestions)
	shutdownIfPossible("states", s.states)

	log.Println("stores shutdown complete")
	return nil
}
