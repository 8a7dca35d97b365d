// Command s3repo loads S3 snapshot repository definitions from a YAML file
// and serves them over a small admin API.
//
//	s3repo -config repos.yaml -listen :8080 -log-format console
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/koustreak/s3repo/internal/api"
	"github.com/koustreak/s3repo/internal/filestore"
	"github.com/koustreak/s3repo/internal/filestore/minio"
	"github.com/koustreak/s3repo/internal/filestore/s3"
	"github.com/koustreak/s3repo/internal/logger"
	"github.com/koustreak/s3repo/internal/registry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var (
		configPath = flag.String("config", "", "path to the repositories YAML file")
		listen     = flag.String("listen", ":8080", "admin API listen address")
		logLevel   = flag.String("log-level", "info", "debug, info, warn or error")
		logFormat  = flag.String("log-format", "json", "json or console")
		verify     = flag.Bool("verify", false, "ping every repository bucket at startup")
	)
	flag.Parse()

	logCfg := logger.DefaultConfig()
	logCfg.Level = *logLevel
	logCfg.Format = *logFormat
	log := logger.New(logCfg)

	if err := run(log, *configPath, *listen, *verify); err != nil {
		log.ErrorWith("s3repo exited", err, nil)
		os.Exit(1)
	}
}

func run(log *logger.Logger, configPath, listen string, verify bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	boot, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	factory := filestore.Factories{
		filestore.ProviderMinIO: minio.Factory{},
		filestore.ProviderS3:    s3.Factory{},
	}
	reg := registry.New(boot.node, factory, log)
	defer reg.Close()

	if err := reg.RegisterAll(ctx, boot.repos); err != nil {
		return err
	}
	log.With().
		Int("repositories", len(boot.repos)).
		Bool("verify", verify).
		Logger().
		Info("repositories registered")

	if verify {
		for _, name := range reg.Names() {
			repo, err := reg.Get(name)
			if err != nil {
				continue
			}
			if err := repo.Verify(ctx); err != nil {
				log.ErrorWith("repository verification failed", err, map[string]interface{}{"repository": name})
			}
		}
	}

	srv := &http.Server{
		Addr:              listen,
		Handler:           api.NewRouter(reg, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("admin API listening on %s", listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
