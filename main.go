// Package main is the entry point for the ECB reference rates service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"gitlab.com/yelinaung/ecb-rates/internal/bot"
	"gitlab.com/yelinaung/ecb-rates/internal/config"
	"gitlab.com/yelinaung/ecb-rates/internal/exchange"
	"gitlab.com/yelinaung/ecb-rates/internal/logger"
	"gitlab.com/yelinaung/ecb-rates/internal/rates"
	"gitlab.com/yelinaung/ecb-rates/internal/server"
	"gitlab.com/yelinaung/ecb-rates/internal/telemetry"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("ecb-rates %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	logger.InitHashSalt()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.OptionsFromConfig(cfg))
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to set up telemetry")
	}
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to shut down telemetry")
		}
	}()

	table := rates.New(ctx, exchange.NewECBClient(cfg.FeedURL, cfg.FetchTimeout))
	if err := table.SetBaseCurrency(cfg.BaseCurrency); err != nil {
		logger.Log.Warn().
			Err(err).
			Str("currency", cfg.BaseCurrency).
			Msg("Failed to set base currency, keeping EUR")
	}

	logger.Log.Info().
		Bool("parsed", table.Parsed()).
		Str("date", table.Date()).
		Str("base", table.Base()).
		Int("currencies", table.Len()).
		Msg("Rate table ready")

	if !cfg.ServerEnabled() && !cfg.BotEnabled() {
		fmt.Println(table.RatesTable(cfg.Labels()))
		return
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Log.Info().Msg("Shutting down...")
		cancel()
	}()

	var wg sync.WaitGroup

	if cfg.ServerEnabled() {
		srv := server.New(cfg, table.Clone())
		wg.Go(func() {
			if err := srv.Run(ctx); err != nil {
				logger.Log.Error().Err(err).Msg("HTTP server stopped")
				cancel()
			}
		})
	}

	if cfg.BotEnabled() {
		telegramBot, err := bot.New(cfg, table.Clone())
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to create bot")
		}
		wg.Go(func() {
			telegramBot.Start(ctx)
		})
	}

	wg.Wait()
}
