package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	RotateMaxSize    = 30 // MB
	RotateLocalTime  = true
	RotateMaxAge     = 365 // Дней
	RotateMaxBackups = 10  // Колличество файлов
	RotateCompress   = true
	TimestampFormat  = "2006.01.02 15:04:05"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

// Config конфигурация лога
type Config struct {
	Path    string
	File    string
	Level   logrus.Level
	Console bool
}

// GetWithConfig логирование с конфигурацией. Конфигурация применяется только при первом вызове
func GetWithConfig(config Config) *logrus.Logger {
	once.Do(func() {
		logger = New(config)
		logger.Infof("----------===== начало записи в лог %s =====----------", time.Now().Format(TimestampFormat))
	})
	return logger
}

// New создаёт независимый логгер. Если файл не указан или задан Console, пишет только на консоль
func New(config Config) *logrus.Logger {
	log := logrus.New()
	log.Level = config.Level
	log.Formatter = &logrus.TextFormatter{
		DisableColors:   false,
		FullTimestamp:   true,
		TimestampFormat: TimestampFormat,
	}
	log.Out = Output(config)
	log.AddHook(LogrusContextHook{})
	return log
}

// Output куда пишется лог: консоль и ротируемый файл
func Output(config Config) io.Writer {
	if config.Console || config.File == "" {
		return os.Stdout
	}
	return io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   filepath.Join(config.Path, config.File),
		MaxSize:    RotateMaxSize, // MB
		MaxAge:     RotateMaxAge,  // Day
		MaxBackups: RotateMaxBackups,
		LocalTime:  RotateLocalTime,
		Compress:   RotateCompress,
	})
}

// Discard логгер, который ничего не пишет. Используется, если компоненту логгер не передан
func Discard() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}
