package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/dogwalk/server/internal/config"
	"github.com/dogwalk/server/internal/data"
	"github.com/dogwalk/server/internal/game"
	"github.com/dogwalk/server/internal/persist"
	"github.com/dogwalk/server/internal/web"
	"github.com/dogwalk/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

type cliArgs struct {
	configFile      string
	wwwRoot         string
	serverConfig    string
	tickPeriodMs    int64
	randomizeSpawns bool
}

func parseArgs() (cliArgs, error) {
	var args cliArgs
	fs := pflag.NewFlagSet("dogwalkd", pflag.ContinueOnError)
	fs.StringVarP(&args.configFile, "config-file", "c", "", "set config file path")
	fs.StringVarP(&args.wwwRoot, "www-root", "w", "", "set static files root")
	fs.StringVar(&args.serverConfig, "server-config", "", "set server config path (TOML)")
	fs.Int64VarP(&args.tickPeriodMs, "tick-period", "t", 0, "set tick period in milliseconds")
	fs.BoolVar(&args.randomizeSpawns, "randomize-spawn-points", false, "spawn dogs at random positions")
	help := fs.BoolP("help", "h", false, "produce help message")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return args, err
	}
	if *help {
		fmt.Println("Usage: dogwalkd [options]")
		fs.PrintDefaults()
		os.Exit(0)
	}
	if args.configFile == "" {
		return args, errors.New("game config file path is not specified")
	}
	if args.wwwRoot == "" {
		return args, errors.New("static files root is not specified")
	}
	return args, nil
}

func run() error {
	args, err := parseArgs()
	if err != nil {
		return err
	}

	cfg, err := config.Load(args.serverConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	dsn := os.Getenv("GAME_DB_URL")
	if dsn == "" {
		return errors.New("GAME_DB_URL environment variable is not set")
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(startCtx, dsn, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := persist.RunMigrations(startCtx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	gd, err := data.LoadGameData(args.configFile)
	if err != nil {
		return fmt.Errorf("load game data: %w", err)
	}
	log.Info("game data loaded",
		zap.String("path", args.configFile),
		zap.Int("maps", gd.Maps.Count()))

	g := world.NewGame(gd)
	app := game.NewApp(g, persist.NewRetiredRepo(db), game.Options{
		RandomizeSpawns: args.randomizeSpawns,
		AutoTick:        args.tickPeriodMs > 0,
	}, log)

	router := mux.NewRouter()
	web.NewAPI(app).Register(router)
	router.PathPrefix("/").Handler(web.NewFileServer(args.wwwRoot))

	srv := &http.Server{
		Addr:        cfg.Server.BindAddress,
		Handler:     web.AccessLog(log, router),
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	grp, ctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		return app.Strand().Run(ctx)
	})

	if app.AutoTick() {
		period := time.Duration(args.tickPeriodMs) * time.Millisecond
		ticker := game.NewTicker(period, app.Advance)
		grp.Go(func() error {
			return ticker.Run(ctx)
		})
		log.Info("automatic ticks enabled", zap.Duration("period", period))
	}

	grp.Go(func() error {
		log.Info("listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	grp.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := grp.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
