package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThiagoFantino/2025-simuladores-back/internal/config"
	"github.com/ThiagoFantino/2025-simuladores-back/internal/engine"
	"github.com/ThiagoFantino/2025-simuladores-back/internal/rabbitmq"
	"github.com/ThiagoFantino/2025-simuladores-back/internal/storage"
)

func panicErr(err error) {
	if err != nil {
		panic(err)
	}
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		slog.SetLogLoggerLevel(slog.LevelDebug)
	case "info":
		slog.SetLogLoggerLevel(slog.LevelInfo)
	case "warn":
		slog.SetLogLoggerLevel(slog.LevelWarn)
	case "error":
		slog.SetLogLoggerLevel(slog.LevelError)
	default:
		slog.SetLogLoggerLevel(slog.LevelWarn)
	}
}

func main() {
	cfg, err := config.NewConfig()
	panicErr(err)
	setLogLevel(cfg.LogLevel)

	eng := engine.New(engine.Config{
		MaxConcurrent:   cfg.MaxConcurrentRuns,
		TestConcurrency: cfg.TestConcurrency,
		PythonBin:       cfg.PythonBin,
		NodeBin:         cfg.NodeBin,
		WorkRoot:        cfg.WorkRoot,
		EnableCgroup:    cfg.EnableCgroup,
		CgroupParent:    cfg.CgroupParent,
	})

	fixtures, err := storage.NewFixtureStore(storage.Config{
		Url:      cfg.MinIOHost,
		Login:    cfg.MinIOLogin,
		Password: cfg.MinIOPassword,
		Bucket:   cfg.MinIOBucket,
	})
	panicErr(err)

	listener := rabbitmq.NewHandler(rabbitmq.HandlerConfig{
		Login:        cfg.RabbitMQUser,
		Password:     cfg.RabbitMQPassword,
		Host:         cfg.RabbitMQHost,
		Port:         cfg.RabbitMQPort,
		WorkersCount: cfg.WorkersCount,
	}, eng, fixtures)
	panicErr(listener.Start())

	slog.Info("app started", "languages", eng.Languages())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	listener.Close()
}
