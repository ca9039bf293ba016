package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"spinachlang-api/internal/compiler"
	"spinachlang-api/internal/config"
	"spinachlang-api/internal/memory"
	"spinachlang-api/internal/parser"
	"spinachlang-api/internal/reload"
	"spinachlang-api/internal/routing"
	"spinachlang-api/internal/server"
)

func main() {
	args, err := parser.ParseDefaultConfigurationArguments()

	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse arguments")
	}

	if err := config.ConfigureLogging(args.LogLevel); err != nil {
		log.Fatal().Err(err).Msg("failed to configure logging")
	}

	log.Info().Str("environment", config.GetCurrentEnvironment()).Msg("starting spinach-api")

	spinach, err := compiler.New(args.Compiler, compiler.Options{
		Path: args.CompilerPath,
		Args: args.CompilerArguments(),
	})

	if err != nil {
		log.Fatal().Err(err).Msg("failed to create compiler")
	}

	version := config.ResolveVersion(args.Version)

	schema, err := routing.NewSchema(routing.Options{
		Version: version,
		Adapter: compiler.NewAdapter(spinach, args.CompilerTimeout),
	})

	if err != nil {
		log.Fatal().Err(err).Msg("failed to create schema")
	}

	router := routing.NewRouter(routing.RouterConfig{
		Schema:       schema,
		GraphiQL:     args.GraphiQL,
		RateLimit:    args.RateLimit,
		RateBurst:    args.RateBurst,
		TrustedProxy: args.TrustedProxy,
		RateClients:  args.RateClients,
		MaxBodySize:  memory.Memory(args.MaxBodySize),
		AccessLog:    log.Logger,
	})

	srv := server.New(net.JoinHostPort(args.Host, strconv.Itoa(args.Port)), router)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to listen")
		}
	}()

	log.Info().Str("version", version).Str("path", routing.GraphQLPath).Msg("serving spinachlang API")

	// wait for signal to exit, or a change to restart when reloading
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	restart := false

	if args.Reload {
		restart = waitForChange(ctx)
	} else {
		<-ctx.Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	if restart {
		log.Info().Msg("restarting")

		if err := reload.Restart(); err != nil {
			log.Fatal().Err(err).Msg("failed to restart")
		}
	}
}

// waitForChange blocks until the working directory or the executable changed,
// returning false when the context was cancelled first.
func waitForChange(ctx context.Context) bool {
	paths := make([]string, 0, 2)

	if wd, err := os.Getwd(); err == nil {
		paths = append(paths, wd)
	}

	if executable, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Dir(executable))
	}

	watcher, err := reload.NewWatcher(reload.DefaultDebounce, paths...)

	if err != nil {
		log.Error().Err(err).Msg("reload disabled")
		<-ctx.Done()

		return false
	}

	defer watcher.Close()

	log.Info().Strs("paths", paths).Msg("watching for changes")
	changed, err := watcher.Wait(ctx)

	if err != nil {
		return false
	}

	log.Info().Str("path", changed).Msg("change detected")
	return true
}
