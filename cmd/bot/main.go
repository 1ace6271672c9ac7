// Package main - точка входа бота.
// Загружает конфигурацию, инициализирует приложение и запускает.
// Поддерживает graceful shutdown по SIGINT/SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-bot/internal/app"
	"serotonyl.ru/eco-bot/internal/config"
	"serotonyl.ru/eco-bot/internal/logging"
)

func main() {
	// Формат логов нужен до загрузки конфига: ошибки конфига тоже логируются
	if _, err := logging.Setup(logging.Options{}); err != nil {
		log.WithError(err).Fatal("Не удалось настроить логирование")
	}

	log.Info("=== Бот запускается ===")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Не удалось загрузить конфигурацию")
	}

	closeLog, err := logging.Setup(logging.Options{
		Level:      cfg.AppLogLevel,
		File:       cfg.AppLogFile,
		MaxSizeMB:  cfg.AppLogMaxSizeMB,
		MaxBackups: cfg.AppLogMaxBackups,
		MaxAgeDays: cfg.AppLogMaxAgeDays,
	})
	if err != nil {
		log.WithError(err).Fatal("Не удалось настроить логирование")
	}
	defer closeLog()

	// Контекст отменяется по Ctrl+C или docker stop
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Не удалось инициализировать приложение")
	}
	defer application.Close()

	log.Info("=== Бот готов к работе ===")
	if err := application.Run(ctx); err != nil {
		log.WithError(err).Error("Бот остановлен с ошибкой")
		return
	}

	log.Info("=== Бот остановлен ===")
}
