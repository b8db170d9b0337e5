package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/curaious/devboard/internal/api"
	"github.com/curaious/devboard/internal/api/authenticator"
	"github.com/curaious/devboard/internal/config"
	"github.com/curaious/devboard/internal/db"
	"github.com/curaious/devboard/internal/migrations"
	"github.com/curaious/devboard/internal/services"
	"github.com/curaious/devboard/internal/session"
	"github.com/curaious/devboard/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and start the HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		conf := config.ReadConfig()
		if err := conf.Validate(); err != nil {
			log.Fatalln(err)
		}

		shutdownTelemetry, err := telemetry.NewProvider(conf.OTEL_SERVICE_NAME, conf.OTEL_EXPORTER_OTLP_ENDPOINT, os.Stdout)
		if err != nil {
			log.Fatalln("unable to create trace provider:", err)
		}
		defer shutdownTelemetry()

		conn, err := db.NewConn(conf)
		if err != nil {
			log.Fatalln(err)
		}
		defer conn.Close()

		m, err := migrations.NewMigrator(conn)
		if err != nil {
			log.Fatalln("unable to create migrator:", err)
		}

		if err := m.Up(0); err != nil {
			log.Fatalln("unable to run migrations:", err)
		}

		revocations, closeRevocations := newRevocationStore(cmd.Context(), conf)
		defer closeRevocations()

		auth, err := authenticator.New(conf, revocations)
		if err != nil {
			log.Fatalln(err)
		}

		s := api.New(conf, services.NewServices(conf, services.PostgresStores(conn)), auth)
		if err := s.Start(); err != nil {
			slog.Error("Server stopped", slog.Any("error", err))
		}
	},
}

// newRevocationStore uses redis when REDIS_ADDR is set and falls back to
// process memory otherwise.
func newRevocationStore(ctx context.Context, conf *config.Config) (session.RevocationStore, func()) {
	if conf.REDIS_ADDR == "" {
		slog.Warn("REDIS_ADDR is not set, session revocations are kept in memory")
		store := session.NewInMemoryStore()
		return store, store.Stop
	}

	store := session.NewRedisStore(redis.NewClient(&redis.Options{
		Addr:     conf.REDIS_ADDR,
		Password: conf.REDIS_PASSWORD,
		DB:       conf.REDIS_DB,
	}), "")

	if ctx == nil {
		ctx = context.Background()
	}
	if err := store.Ping(ctx); err != nil {
		log.Fatalln("unable to connect to redis:", err)
	}

	return store, func() {
		if err := store.Close(); err != nil {
			slog.Error("Unable to close redis client", slog.Any("error", err))
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
