package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/cuemby/linkproxy/internal/authclient"
	"github.com/cuemby/linkproxy/internal/bulk"
	"github.com/cuemby/linkproxy/internal/config"
	"github.com/cuemby/linkproxy/internal/httpapi"
	"github.com/cuemby/linkproxy/internal/importer"
	"github.com/cuemby/linkproxy/internal/ingest"
	"github.com/cuemby/linkproxy/internal/log"
	"github.com/cuemby/linkproxy/internal/metrics"
	"github.com/cuemby/linkproxy/internal/session"
	"github.com/cuemby/linkproxy/internal/store"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "linkproxy",
		Short:   "Hash-interned RDF caching and delta proxy",
		Version: Version,
	}
	config.BindFlags(root)

	root.AddCommand(serverCmd())
	root.AddCommand(ingestCmd())
	return root
}

func serverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Serve the HTTP surface: bulk, update, tpf/hpf, resource lookups",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromCommand(cmd)
			if err != nil {
				return err
			}
			log.Init(log.Config{Level: log.Level(cfg.LogLevel), JSONOutput: cfg.LogJSON})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			st, err := store.Open(ctx, cfg.DatabaseDSN)
			if err != nil {
				return fmt.Errorf("open object store: %w", err)
			}
			defer st.Close()

			seed, err := st.Seed(ctx)
			if err != nil {
				return fmt.Errorf("load hashing seed: %w", err)
			}

			metrics.SetVersion(Version)
			collector := metrics.NewCollector(st)
			collector.Start(15 * time.Second)
			defer collector.Stop()

			authClient := authclient.New(authclient.Config{
				DataServerURL: cfg.DataServerURL,
				Timeout:       cfg.DataServerTimeout,
			})
			imp := importer.New(st)

			var sessions *session.Resolver
			if cfg.SessionCookieSecret != "" {
				redisClient := redis.NewClient(mustParseRedisURL(cfg.RedisURL))
				sessions = session.NewResolver(session.Config{
					CookieName:    cfg.SessionCookieName,
					SigCookieName: cfg.SessionCookieName + ".sig",
					CookieSecret:  cfg.SessionCookieSecret,
					JWTKey:        []byte(cfg.JWTSigningKey),
					OAuth: oauth2.Config{
						ClientID:     cfg.OAuthClientID,
						ClientSecret: cfg.OAuthClientSecret,
						Endpoint:     oauth2.Endpoint{TokenURL: strings.TrimRight(cfg.DataServerURL, "/") + "/oauth/token"},
					},
				}, redisClient)
			}

			orchestrator := bulk.New(st, authClient, imp, sessions)

			router := httpapi.NewRouter(httpapi.Deps{
				Store:               st,
				Seed:                seed,
				Bulk:                orchestrator,
				Importer:            imp,
				EnableUnsafeMethods: cfg.EnableUnsafeMethods,
			})

			httpServer := &http.Server{
				Addr:    cfg.BindAddr,
				Handler: router,
			}

			errCh := make(chan error, 1)
			go func() {
				log.WithComponent("server").Info().Str("addr", cfg.BindAddr).Msg("listening")
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			select {
			case <-sigCh:
				log.WithComponent("server").Info().Msg("shutting down")
			case err := <-errCh:
				return fmt.Errorf("http server failed: %w", err)
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}
}

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Run the pub/sub ingestion loop, applying deltas as they arrive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromCommand(cmd)
			if err != nil {
				return err
			}
			log.Init(log.Config{Level: log.Level(cfg.LogLevel), JSONOutput: cfg.LogJSON})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			st, err := store.Open(ctx, cfg.DatabaseDSN)
			if err != nil {
				return fmt.Errorf("open object store: %w", err)
			}
			defer st.Close()

			seed, err := st.Seed(ctx)
			if err != nil {
				return fmt.Errorf("load hashing seed: %w", err)
			}

			redisClient := redis.NewClient(mustParseRedisURL(cfg.RedisURL))
			source := ingest.NewRedisSource(redisClient, cfg.RedisChannel)
			defer source.Close()

			imp := importer.New(st)
			reporter := ingest.NewReporter()
			defer reporter.Close()

			loop := ingest.NewLoop(source, st, imp, seed, reporter)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigCh
				log.WithComponent("ingest").Info().Msg("shutting down")
				cancel()
			}()

			log.WithComponent("ingest").Info().Str("channel", cfg.RedisChannel).Msg("starting ingestion loop")
			loop.Run(ctx)
			return nil
		},
	}
}

func mustParseRedisURL(raw string) *redis.Options {
	opts, err := redis.ParseURL(raw)
	if err != nil {
		log.WithComponent("main").Fatal().Err(err).Str("url", raw).Msg("invalid redis url")
	}
	return opts
}
