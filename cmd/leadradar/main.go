// Сервер LeadRadar: API конструктора форм захвата лидов. Читает конфигурацию из окружения, открывает БД, выполняет миграцию и запускает HTTP сервер.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bmue76/leadradar/internal/leadradar"
	"github.com/bmue76/leadradar/internal/leadradar/config"
	"github.com/bmue76/leadradar/internal/leadradar/dao"
	"github.com/bmue76/leadradar/internal/leadradar/gormlogger"
	"github.com/bmue76/leadradar/internal/leadradar/utils"
	"github.com/bmue76/leadradar/pkg/limiter"
)

var version string = "DEV"

// Пример запуска: go run ./cmd/leadradar --trace
// Выпуск токена арендатора: go run ./cmd/leadradar --issueToken acme --tokenTTL 720h
func main() {
	paramQueries := flag.Bool("paramQueries", true, "Mask queries params in log")
	noMigration := flag.Bool("noMigration", false, "Turn off DB migration")
	trace := flag.Bool("trace", false, "Verbose logs and sql trace")
	issueToken := flag.String("issueToken", "", "Print API token for tenant and exit")
	tokenTTL := flag.Duration("tokenTTL", 24*time.Hour, "Issued token lifetime")
	flag.Parse()

	if *trace {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Set prod log format
	if version != "DEV" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
	}

	cfg, err := config.ReadConfig()
	if err != nil {
		slog.Error("Read config", "err", err)
		os.Exit(1)
	}

	if *issueToken != "" {
		token, err := leadradar.IssueTenantToken([]byte(cfg.SecretKey), *issueToken, *tokenTTL)
		if err != nil {
			slog.Error("Issue token", "tenant", *issueToken, "err", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	PrintBanner()
	slog.Info("LeadRadar start.")

	limiter.Init(cfg)

	db, err := utils.OpenDB(cfg.DatabaseDSN, gormlogger.NewGormLogger(slog.Default(), cfg.SlowQueryThreshold(), *paramQueries))
	if err != nil {
		slog.Error("Fail init DB connection", "err", err)
		os.Exit(1)
	}

	if !*noMigration {
		if err := dao.Migrate(db); err != nil {
			slog.Error("Migrate models", "err", err)
			os.Exit(1)
		}
		slog.Info("Migration done")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := leadradar.Server(ctx, db, cfg, version); err != nil {
		slog.Error("Server stopped", "err", err)
		os.Exit(1)
	}
	slog.Info("LeadRadar stopped")
}

func PrintBanner() {
	colorReset := "\033[0m"
	colorYellow := "\033[33m"

	formattedVersion := version
	if version == "DEV" {
		formattedVersion = colorYellow + version + colorReset
	}
	fmt.Printf("LeadRadar %s\nForm builder for lead capture\n----------------------------------------------------\n", formattedVersion)
}
