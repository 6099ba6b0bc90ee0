package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UkralStul/social-feed/graph"
	"github.com/UkralStul/social-feed/graph/generated"
	"github.com/UkralStul/social-feed/internal/build"
	"github.com/UkralStul/social-feed/internal/config"
	"github.com/UkralStul/social-feed/internal/feed"
	"github.com/UkralStul/social-feed/internal/mockdata"
	"github.com/UkralStul/social-feed/internal/pubsub"
	"github.com/UkralStul/social-feed/internal/server"
	"github.com/UkralStul/social-feed/internal/storage"
	"github.com/UkralStul/social-feed/internal/storage/inmemory"
	"github.com/UkralStul/social-feed/internal/storage/postgres"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the GraphQL server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().String("storage", config.StorageInMemory, "Storage type (in-memory or postgres)")
	cmd.Flags().String("addr", ":8080", "HTTP listen address")
	_ = v.BindPFlag("storage", cmd.Flags().Lookup("storage"))
	_ = v.BindPFlag("http.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func openStore(cfg *config.Config) (storage.Storage, func(), error) {
	if cfg.Storage == config.StoragePostgres {
		store, err := postgres.New(cfg.DB.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	}
	return inmemory.New(), func() {}, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	log.Printf("Starting socialfeed %s with %s storage", build.Version, cfg.Storage)

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Reset(ctx); err != nil {
		return fmt.Errorf("reset storage: %w", err)
	}

	gen := mockdata.NewGenerator(cfg.Seed.RandomSeed)
	counts := mockdata.Counts{Users: cfg.Seed.Users, Posts: cfg.Seed.Posts, Comments: cfg.Seed.Comments}
	if err := gen.Seed(ctx, store, counts); err != nil {
		return fmt.Errorf("seed mock data: %w", err)
	}
	log.Printf("Seeded %d users, %d posts, %d comments", counts.Users, counts.Posts, counts.Comments)

	svc := feed.NewService(store, pubsub.New())
	go svc.RunPostTicker(ctx, cfg.TickerInterval, gen)

	resolver := &graph.Resolver{Storage: store, Feed: svc}
	opts := server.Options{AllowedOrigins: cfg.WS.AllowedOrigins, KeepAlive: cfg.WS.KeepAlive}
	gql := server.NewGraphQLServer(generated.NewExecutableSchema(generated.Config{Resolvers: resolver}), opts)

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           server.NewRouter(gql, store, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("connect to http://localhost%s/ for GraphQL playground", cfg.HTTP.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Printf("server stopped")
	return nil
}
