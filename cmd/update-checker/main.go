package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/egigoka/telegram-update-checker/internal/config"
	"github.com/egigoka/telegram-update-checker/internal/logger"
	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run())
}

func run() int {
	flags := ParseFlags()

	bootLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile, bootLogger)
	if err != nil {
		bootLogger.Error().Err(err).Str("path", flags.GlobalConfigFile).Msg("Could not load configuration")
		return 1
	}

	// Override mode if -mode flag is set (takes precedence over config file)
	if flags.Mode != "" {
		gCfg.Mode = flags.Mode
	}
	gCfg.Mode = strings.ToLower(gCfg.Mode)

	if err := config.ValidateConfig(gCfg); err != nil {
		bootLogger.Error().Err(err).Msg("Configuration validation failed")
		return 1
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		bootLogger.Error().Err(err).Msg("Could not initialize logger")
		return 1
	}
	zLogger.Info().Str("mode", gCfg.Mode).Msg("Update checker starting")

	app, err := newApplication(gCfg, zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("Failed to initialize application")
		return 1
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flags.TargetsFile != "" {
		if err := app.mergeTargets(flags.TargetsFile); err != nil {
			zLogger.Error().Err(err).Str("file", flags.TargetsFile).Msg("Failed to merge targets file")
			return 1
		}
	}

	if gCfg.Mode == config.ModeOnetime {
		return runOnetime(ctx, app)
	}
	return runAutomated(ctx, app)
}

func runOnetime(ctx context.Context, app *application) int {
	summary, err := app.runOnetime(ctx)
	if err != nil {
		app.logger.Error().Err(err).Msg("Onetime check failed")
		return 1
	}

	fmt.Println(summary.String())
	if failed := summary.Failed(); len(failed) > 0 {
		app.logger.Error().Strs("urls", failed).Msg("Some URLs could not be checked")
		return 1
	}
	return 0
}

func runAutomated(ctx context.Context, app *application) int {
	var wg sync.WaitGroup
	var mutex sync.Mutex
	exitCode := 0

	fail := func(component string, err error) {
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		app.logger.Error().Err(err).Str("service", component).Msg("Service stopped with error")
		mutex.Lock()
		exitCode = 1
		mutex.Unlock()
	}

	if !app.cfg.TelegramConfig.DisableCommands {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fail("dispatcher", app.dispatcher.Run(ctx))
		}()
	} else {
		app.logger.Info().Msg("Chat commands disabled")
	}

	if app.cfg.MonitorConfig.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fail("checker", app.checker.RunForever(ctx))
		}()
	} else {
		app.logger.Info().Msg("Periodic checks disabled")
	}

	wg.Wait()

	if ctx.Err() != nil {
		app.logger.Info().Msg("Application shutting down due to signal")
	} else {
		app.logger.Info().Msg("Application finished")
	}
	return exitCode
}
