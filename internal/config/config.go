package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config — настройки веб-сервера и значения формы по умолчанию
type Config struct {
	Addr      string   `yaml:"addr"`
	StaticDir string   `yaml:"staticDir"`
	Defaults  Defaults `yaml:"defaults"`
}

// Defaults — параметры метода, подставляемые при пустых полях запроса
type Defaults struct {
	Eps     float64 `yaml:"eps"`
	MaxIter int     `yaml:"maxIter"`
}

// Default возвращает конфигурацию со значениями из исходной задачи
func Default() Config {
	return Config{
		Addr:      ":8080",
		StaticDir: "static",
		Defaults: Defaults{
			Eps:     1e-4,
			MaxIter: 20,
		},
	}
}

// Load читает YAML-файл поверх значений по умолчанию.
// Отсутствующий файл — не ошибка: работаем с Default().
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("чтение конфигурации: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("разбор конфигурации: %w", err)
	}

	if cfg.Defaults.Eps <= 0 {
		cfg.Defaults.Eps = 1e-4
	}
	if cfg.Defaults.MaxIter < 1 {
		cfg.Defaults.MaxIter = 20
	}

	return cfg, nil
}
