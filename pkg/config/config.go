package config

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/jinzhu/configor"
)

var (
	config Config
	once   sync.Once
)

const FileName = "config.yaml"

// GetWithPath единожды читает и возвращает конфигурацию
func GetWithPath(filepath string) *Config {
	once.Do(func() {
		cfg, err := Load(filepath)
		if err != nil {
			log.Fatal(err)
		}
		config = *cfg
	})
	return &config
}

// Load читает конфигурацию из файла без кэширования
func Load(filepath string) (*Config, error) {
	var cfg Config
	if _, err := os.Stat(filepath); err != nil {
		return nil, &FileError{Path: filepath, Err: err}
	}
	if err := configor.Load(&cfg, filepath); err != nil {
		return nil, &FileError{Path: filepath, Err: err}
	}
	// Корректировки значений
	cfg.Serial.ReadTimeout = cfg.Serial.ReadTimeout * time.Second
	cfg.Serial.PollInterval = cfg.Serial.PollInterval * time.Millisecond
	cfg.Monitor.StaleAfter = cfg.Monitor.StaleAfter * time.Second
	return &cfg, nil
}

// FileError файл конфигурации недоступен или некорректен
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return "ошибка чтения файла конфигурации " + e.Path + ": " + e.Err.Error()
}
