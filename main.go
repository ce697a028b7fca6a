package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/couchbase/gocb/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tweet-relay/internal/profiles/reader"
	"tweet-relay/internal/profiles/writer"
	"tweet-relay/internal/server"
	"tweet-relay/internal/twitter"
)

type Config struct {
	Addr string `env:"ADDR" envDefault:":8000"`

	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`

	CouchbaseEndpoint string `env:"COUCHBASE_ENDPOINT,required"`

	CouchbaseUsername string `env:"COUCHBASE_USERNAME,required"`

	CouchbasePassword string `env:"COUCHBASE_PASSWORD,required"`

	CouchbaseBucket string `env:"COUCHBASE_BUCKET,required"`

	TwitterConsumerKey string `env:"TWITTER_CONSUMER_KEY,required"`

	TwitterConsumerSecret string `env:"TWITTER_CONSUMER_SECRET,required"`

	TwitterAccessToken string `env:"TWITTER_ACCESS_TOKEN,required"`

	TwitterAccessTokenSecret string `env:"TWITTER_ACCESS_TOKEN_SECRET,required"`
}

func main() {
	cfg, err := getConfig()
	if err != nil {
		log.Fatalf("unable to get config: %s", err)
	}

	logger, err := zap.NewDevelopment(
		zap.WithCaller(true),
	)
	if err != nil {
		log.Fatalf("unable to initialize logger: %s", err)
	}

	cluster, err := getCluster(cfg)
	if err != nil {
		log.Fatalf("unable to initialize cluster: %s", err)
	}

	handler, err := getHandler(logger, cluster, cfg)
	if err != nil {
		log.Fatalf("unable to initialize handler: %s", err)
	}

	router := chi.NewRouter()
	handler.Mount(router)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	// handle interrupts
	g.Go(func() error {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)

		select {
		case <-gctx.Done():
			return nil
		case <-c:
			const waitShutdown = time.Second * 5
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), waitShutdown)
			defer shutdownCancel()
			defer cancel()

			return srv.Shutdown(shutdownCtx)
		}
	})

	g.Go(func() error {
		logger.Info("started server", zap.String("addr", cfg.Addr))

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("error waiting for go routines to finish: %s", err)
	}
}

func getConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func getHandler(logger *zap.Logger, cluster *gocb.Cluster, cfg *Config) (*server.Handler, error) {
	r, err := reader.NewService(logger, cluster, cfg.CouchbaseBucket)
	if err != nil {
		return nil, err
	}

	w, err := writer.NewService(logger, cluster, cfg.CouchbaseBucket)
	if err != nil {
		return nil, err
	}

	tweets, err := twitter.NewClient(logger, twitter.Credentials{
		ConsumerKey:       cfg.TwitterConsumerKey,
		ConsumerSecret:    cfg.TwitterConsumerSecret,
		AccessToken:       cfg.TwitterAccessToken,
		AccessTokenSecret: cfg.TwitterAccessTokenSecret,
	})
	if err != nil {
		return nil, err
	}

	return server.New(logger, r, w, tweets, cfg.CORSAllowedOrigin)
}

func getCluster(cfg *Config) (*gocb.Cluster, error) {
	c, err := gocb.Connect(
		"couchbases://"+cfg.CouchbaseEndpoint,
		gocb.ClusterOptions{
			Username: cfg.CouchbaseUsername,
			Password: cfg.CouchbasePassword,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to cluster: %w", err)
	}

	if err := c.WaitUntilReady(time.Second*5, nil); err != nil {
		return nil, fmt.Errorf("unable to wait until cluster ready: %w", err)
	}

	return c, nil
}
