package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"s3simplified/internal/cli"
	"s3simplified/internal/config"
	"s3simplified/internal/logging"
	"s3simplified/internal/object"
	"s3simplified/internal/otel"
	"s3simplified/internal/service"
	"s3simplified/internal/storage"
)

// tracerShutdownTimeout bounds the final span flush.
const tracerShutdownTimeout = 3 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, prometheus.DefaultRegisterer)
	stop()
	os.Exit(code)
}

// run executes one command. Command output goes to stdout; logs and the
// error envelope go to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, reg prometheus.Registerer) int {
	// Load configuration from environment variables (.env loaded when ENV=dev)
	cfg := config.Load()
	log := logging.NewWithWriter(cfg.Log, stderr)

	shutdown, err := otel.Init(ctx, log)
	if err != nil {
		log.WithError(err).Error("failed to initialize tracing")
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.WithError(err).Warn("tracer shutdown failed")
		}
	}()

	transport, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.WithError(err).Error("failed to initialize object storage")
		return 1
	}
	transport, err = storage.Instrument(transport, reg, nil)
	if err != nil {
		log.WithError(err).Error("failed to register storage metrics")
		return 1
	}

	app := &cli.App{
		Client:        service.New(transport, service.OptionsFromConfig(cfg.Storage, log)),
		ObjectOptions: object.Options{AppendFileTypeToKey: cfg.Storage.AppendFileTypeToKey},
		Out:           stdout,
	}
	root := cli.NewRootCmd(app)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		cli.WriteError(stderr, err)
		return 1
	}
	return 0
}
