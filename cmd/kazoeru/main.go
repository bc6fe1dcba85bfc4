package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VTGare/gumi"
	"github.com/VTGare/kazoeru/bot"
	"github.com/VTGare/kazoeru/commands"
	"github.com/VTGare/kazoeru/handlers"
	"github.com/VTGare/kazoeru/internal/config"
	"github.com/VTGare/kazoeru/internal/logger"
	"github.com/VTGare/kazoeru/store/jsonfile"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

func newLogger(sentryToken string) (*zap.SugaredLogger, error) {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	if sentryToken != "" {
		sentryOption, err := logger.Sentry(sentryToken)
		if err != nil {
			return nil, err
		}

		zapLogger = zapLogger.WithOptions(sentryOption)
	}

	return zapLogger.Sugar(), nil
}

func main() {
	cfg, err := config.FromFile("config.json")
	if err != nil {
		fmt.Println("config not found: ", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.Sentry)
	if err != nil {
		fmt.Println("failed to initialise logger: ", err)
		os.Exit(1)
	}

	st := jsonfile.New(cfg.Store.Path, log)
	state := st.Load()

	b, err := bot.New(cfg, st, state, log)
	if err != nil {
		log.Fatalf("failed to create a new bot: %v", err)
	}

	b.AddRouter(&gumi.Router{
		AuthorID:                cfg.Discord.AuthorID,
		PrefixResolver:          handlers.PrefixResolver(b),
		OnErrorCallback:         handlers.OnError(b),
		OnRateLimitCallback:     handlers.OnRateLimit(b),
		OnNoPermissionsCallback: handlers.OnNoPerms(b),
		OnExecuteCallback:       handlers.OnExecute(b),
		OnPanicCallBack:         handlers.OnPanic(b),
	})

	commands.RegisterAll(b)
	handlers.RegisterAll(b)

	if err := b.Open(); err != nil {
		log.Fatalf("failed to open a session: %v", err)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	b.Close()

	if cfg.Sentry != "" {
		sentry.Flush(10 * time.Second)
	}
}
