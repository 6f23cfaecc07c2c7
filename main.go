package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"syscall"

	"cryptoScanBot/config"
	"cryptoScanBot/internal/adapters/binanceclient"
	"cryptoScanBot/internal/adapters/cooldownfile"
	"cryptoScanBot/internal/adapters/logger"
	"cryptoScanBot/internal/adapters/sqlite"
	"cryptoScanBot/internal/adapters/telegram"
	"cryptoScanBot/internal/app"
	"cryptoScanBot/internal/ports"
	"cryptoScanBot/internal/scanner"
	"cryptoScanBot/internal/server"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Settings Store (persisted scanner configuration)
	settings, err := config.NewStore(cfg.SettingsPath, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize settings store")
		log.Fatalf("FATAL: Failed to initialize settings store: %v", err)
	}

	// 4. Initialize Repositories (cooldown files + alert history)
	cooldowns, err := cooldownfile.NewRepository(cooldownfile.Config{
		Dir:    cfg.DataDir,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize cooldown repository")
		log.Fatalf("FATAL: Failed to initialize cooldown repository: %v", err)
	}
	history, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize alert history repository")
		log.Fatalf("FATAL: Failed to initialize alert history repository: %v", err)
	}
	defer func() {
		if err := history.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing alert history repository")
		}
	}()

	// 5. Initialize Exchange Client (Binance Adapter)
	market, err := binanceclient.New(binanceclient.Config{
		UseTestnet: cfg.UseTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	// 6. Initialize Dispatcher
	var dispatcher ports.Dispatcher
	if cfg.TelegramConfigured() {
		dispatcher, err = telegram.New(telegram.Config{
			Token:  cfg.TelegramToken,
			ChatID: cfg.TelegramChatID,
			Logger: appLogger,
		})
		if err != nil {
			appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Telegram dispatcher")
			log.Fatalf("FATAL: Failed to initialize Telegram dispatcher: %v", err)
		}
		appLogger.Info(context.Background(), "Telegram dispatcher initialized")
	} else {
		dispatcher = telegram.NewConsoleDispatcher(appLogger)
		appLogger.Warn(context.Background(), "Telegram not configured, alerts will be logged only")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 7. Initialize Scanners
	deps := scanner.Deps{
		Market:       market,
		Cooldowns:    cooldowns,
		Logger:       appLogger,
		FetchTimeout: cfg.FetchTimeout,
	}
	emaTouch, err := scanner.NewEMATouch(ctx, deps)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize EMA touch scanner: %v", err)
	}
	dailyFlip, err := scanner.NewDailyFlip(ctx, deps)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize daily flip scanner: %v", err)
	}
	volume, err := scanner.NewVolume(ctx, deps)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize volume scanner: %v", err)
	}
	athATL, err := scanner.NewATHATL(ctx, deps)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize ATH/ATL scanner: %v", err)
	}

	// 8. Initialize Scan Service
	scans, err := app.NewScanService(settings, dispatcher, history, appLogger, emaTouch, dailyFlip, volume, athATL)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize scan service")
		log.Fatalf("FATAL: Failed to initialize scan service: %v", err)
	}

	// 9. Initialize Control API
	srv, err := server.New(server.Config{
		ListenAddr: cfg.ListenAddr,
		Settings:   settings,
		Scans:      scans,
		Market:     market,
		History:    history,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize control server")
		log.Fatalf("FATAL: Failed to initialize control server: %v", err)
	}

	// 10. Start everything and wait for a shutdown signal
	scans.Start(ctx)
	serverErr := make(chan error, 1)
	go func() { serverErr <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		appLogger.Info(ctx, "Shutdown signal received", map[string]interface{}{"signal": sig.String()})
	case err := <-serverErr:
		if err != nil {
			appLogger.Error(ctx, err, "Control server failed")
		}
	}

	cancel()
	if err := srv.Shutdown(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "Error shutting down control server")
	}
	scans.Wait()
	appLogger.Info(context.Background(), "Application finished gracefully.")
}
