package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"gridcal/internal/config"
	"gridcal/internal/engine"
	"gridcal/internal/grid"
	appLog "gridcal/internal/log"
	"gridcal/internal/model"
	"gridcal/internal/normalize"
	"gridcal/internal/source"
	"gridcal/internal/view"
	"gridcal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
}

func main() {
	appLog.Info("gridcal starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"refresh", conf.RefreshCron,
		"source", conf.Source.Kind,
		"locale", conf.View.Locale,
		"week_starts_on", conf.View.WeekStartsOn,
		"hours_mode", conf.View.HoursMode,
		"minute_granularity", conf.View.MinuteGranularity,
	)

	src := buildSource(conf)
	asm := buildAssembler(conf)

	eng := engine.New(asm, src, nil, nil)
	defer eng.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := eng.Refresh(ctx); err != nil {
		appLog.Error("initial record load failed", err)
		if flags.once {
			os.Exit(1)
		}
	}

	if flags.once {
		runOnce(eng)
		return
	}

	// Periodic refresh keeps pull sources (ICS) current; push sources fire
	// the subscription callback on their own.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(conf.RefreshCron, func() {
		if err := eng.Refresh(context.Background()); err != nil {
			appLog.Error("scheduled refresh failed", err)
		}
	}); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:    conf.Listen,
		Handler: web.NewServer(conf, eng).Handler(),
	}

	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Error("HTTP server failed", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		appLog.Info("signal received, shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP shutdown failed", err)
	}
	appLog.Info("gridcal exiting")
}

// runOnce prints the month grid for the current reference as JSON and exits.
func runOnce(eng *engine.Engine) {
	buckets, err := eng.Grid(model.LayoutMonth)
	if err != nil {
		appLog.Error("grid build failed", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(buckets); err != nil {
		appLog.Error("failed to encode grid", err)
		os.Exit(1)
	}
}

func buildSource(conf *config.Config) source.DataSource {
	switch conf.Source.Kind {
	case "ics":
		return source.NewICS(conf.Source.ICS.URL, conf.Source.ICS.HorizonDays, fieldMap(conf))
	case "redis":
		client := source.NewRedisClient(
			conf.Source.Redis.Address,
			conf.Source.Redis.Password,
			conf.Source.Redis.DB,
		)
		return source.NewRedis(client, conf.Source.Redis.KeyPrefix)
	default:
		return source.NewMemory(nil)
	}
}

func buildAssembler(conf *config.Config) *view.Assembler {
	return &view.Assembler{
		Fields: fieldMap(conf),
		Options: view.Options{
			WeekStart:    conf.WeekStart(),
			WorkdaysOnly: conf.View.WorkdaysOnly,
			Granularity:  conf.View.MinuteGranularity,
			HoursMode:    grid.HoursMode(conf.View.HoursMode),
			TimeFormat:   conf.View.TimeFormat,
			Locale:       conf.View.Locale,
			Palette:      conf.View.Palette,
		},
	}
}

func fieldMap(conf *config.Config) normalize.FieldMap {
	return normalize.FieldMap{
		Title:      conf.Fields.Title,
		Start:      conf.Fields.Start,
		End:        conf.Fields.End,
		StartTime:  conf.Fields.StartTime,
		EndTime:    conf.Fields.EndTime,
		Color:      conf.Fields.Color,
		Attributes: conf.Fields.Attributes,
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/gridcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Load records once, print the month grid as JSON and exit")

	flag.Parse()

	return cfg
}
