// Package logging настраивает глобальный logrus: формат, уровень
// и, при необходимости, файл с ротацией через lumberjack.
package logging

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options - параметры логирования.
type Options struct {
	Level      string    // debug, info, warn, error
	File       string    // путь к файлу; пусто - только stdout
	MaxSizeMB  int       // размер файла до ротации
	MaxBackups int       // сколько старых файлов хранить
	MaxAgeDays int       // сколько дней хранить старые файлы
	Stdout     io.Writer // nil - os.Stdout
}

// Setup применяет настройки к глобальному логгеру.
// Возвращает функцию закрытия файла (no-op без файла).
func Setup(opts Options) (func() error, error) {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level := log.DebugLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	log.SetLevel(level)

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	if opts.File == "" {
		log.SetOutput(stdout)
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, err
	}
	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(stdout, file))
	return file.Close, nil
}
