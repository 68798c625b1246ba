package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config - структура для хранения конфигураций приложения
type Config struct {
	ServerAddress  string        `mapstructure:"SERVER_ADDRESS"`
	PostgresConn   string        `mapstructure:"POSTGRES_CONN"`
	MigrationURL   string        `mapstructure:"MIGRATION_URL"`
	RunMigrations  bool          `mapstructure:"RUN_MIGRATIONS"`
	StorageDir     string        `mapstructure:"STORAGE_DIR"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	MaxUploadMB    int64         `mapstructure:"MAX_UPLOAD_MB"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]any{
	"SERVER_ADDRESS":  ":8080",
	"POSTGRES_CONN":   "",
	"MIGRATION_URL":   "file://migrations",
	"RUN_MIGRATIONS":  true,
	"STORAGE_DIR":     "./data/uploads",
	"REQUEST_TIMEOUT": "5s",
	"MAX_UPLOAD_MB":   20,
	"LOG_LEVEL":       "info",
}

// LoadConfig загружает конфигурацию из app.env в каталоге path.
// Переменные окружения перекрывают файл; отсутствие файла не считается ошибкой.
func LoadConfig(path string) (cfg Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err = v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate проверяет значения, без которых сервис не стартует.
func (c Config) Validate() error {
	if c.PostgresConn == "" {
		return errors.New("POSTGRES_CONN is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// MaxUploadBytes возвращает лимит загрузки в байтах.
func (c Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
