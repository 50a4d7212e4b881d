package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvAPIURL — переменная окружения с базовым URL сервиса классификации.
const EnvAPIURL = "GOMI_API_URL"

// DefaultAPIURL используется, если URL не задан ни в конфиге, ни в окружении.
const DefaultAPIURL = "http://localhost:8000/api/v1"

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	API             APIConfig       `yaml:"api"`
	Upload          UploadConfig    `yaml:"upload"`
	ImageProcessing ImageProcConfig `yaml:"image_processing"`
	S3              S3Config        `yaml:"s3"`
	App             AppSpecific     `yaml:"app"`
	Metrics         MetricsConfig   `yaml:"metrics"`
}

// APIConfig — подключение к сервису классификации.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`        // Поддерживает ${VAR}; пусто -> GOMI_API_URL -> DefaultAPIURL
	HealthTimeout  string `yaml:"health_timeout"`  // Timeout health probe (например, "10s")
	PredictTimeout string `yaml:"predict_timeout"` // Timeout классификации (например, "2m")
	RateLimit      int    `yaml:"rate_limit"`      // Запросов в минуту
	BurstLimit     int    `yaml:"burst_limit"`     // Burst для rate limiter
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *APIConfig) GetDefaults() APIConfig {
	result := *c // Копируем текущие значения

	if result.BaseURL == "" {
		result.BaseURL = os.Getenv(EnvAPIURL)
	}
	if result.BaseURL == "" {
		result.BaseURL = DefaultAPIURL
	}
	if result.HealthTimeout == "" {
		result.HealthTimeout = "10s"
	}
	if result.PredictTimeout == "" {
		// Долгий timeout: холодный старт бэкенда и большие изображения
		result.PredictTimeout = "2m"
	}
	if result.RateLimit == 0 {
		result.RateLimit = 30 // запросов в минуту
	}
	if result.BurstLimit == 0 {
		result.BurstLimit = 3
	}

	return result
}

// Timeouts парсит health и predict timeout.
func (c APIConfig) Timeouts() (health, predict time.Duration, err error) {
	health, err = time.ParseDuration(c.HealthTimeout)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid api.health_timeout format: %w", err)
	}
	predict, err = time.ParseDuration(c.PredictTimeout)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid api.predict_timeout format: %w", err)
	}
	return health, predict, nil
}

// UploadConfig — пороги загрузки.
//
// Жёсткий лимит 10 MiB зашит в upload.Validate и не настраивается:
// это контракт с бэкендом.
type UploadConfig struct {
	CompressThresholdMB float64 `yaml:"compress_threshold_mb"` // Сжимать файлы больше этого размера
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *UploadConfig) GetDefaults() UploadConfig {
	result := *c
	if result.CompressThresholdMB == 0 {
		result.CompressThresholdMB = 5
	}
	return result
}

// CompressThreshold возвращает порог сжатия в байтах.
func (c UploadConfig) CompressThreshold() int64 {
	return int64(c.CompressThresholdMB * 1024 * 1024)
}

// ImageProcConfig — настройки обработки изображений.
type ImageProcConfig struct {
	MaxDimension int `yaml:"max_dimension"`
	Quality      int `yaml:"quality"`
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *ImageProcConfig) GetDefaults() ImageProcConfig {
	result := *c
	if result.MaxDimension == 0 {
		result.MaxDimension = 1920
	}
	if result.Quality == 0 {
		result.Quality = 80
	}
	return result
}

// S3Config — настройки объектного хранилища (опционально).
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey string `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL    bool   `yaml:"use_ssl"`
}

// Enabled true если секция s3 заполнена.
func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug        bool   `yaml:"debug"`
	Language     string `yaml:"language"`      // ja | en | both
	ColorScheme  string `yaml:"color_scheme"`  // default | dark | light | dracula
	HealthPollMs int    `yaml:"health_poll_ms"` // Период опроса health в TUI, 0 = только при старте
}

// MetricsConfig — экспорт Prometheus метрик.
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"` // Например ":9464"; пусто = выключено
}

// Default возвращает конфигурацию без файла: дефолты + окружение.
func Default() *AppConfig {
	cfg := &AppConfig{}
	cfg.applyDefaults()
	return cfg
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. Подставляем переменные окружения.
	// os.ExpandEnv заменяет ${VAR} или $VAR на значение из системы.
	contentWithEnv := os.ExpandEnv(string(rawBytes))

	// 4. Парсим YAML в структуру
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	cfg.applyDefaults()

	// 5. Валидируем критические настройки
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	c.API = c.API.GetDefaults()
	c.Upload = c.Upload.GetDefaults()
	c.ImageProcessing = c.ImageProcessing.GetDefaults()
	if c.App.Language == "" {
		c.App.Language = "ja"
	}
	if c.App.ColorScheme == "" {
		c.App.ColorScheme = "default"
	}
}

// validate проверяет значения, которые нельзя молча исправить.
func (c *AppConfig) validate() error {
	if _, _, err := c.API.Timeouts(); err != nil {
		return err
	}
	if c.API.RateLimit < 0 || c.API.BurstLimit < 0 {
		return fmt.Errorf("api.rate_limit and api.burst_limit must be positive")
	}
	if q := c.ImageProcessing.Quality; q < 1 || q > 100 {
		return fmt.Errorf("image_processing.quality must be within 1..100, got %d", q)
	}
	if c.ImageProcessing.MaxDimension < 1 {
		return fmt.Errorf("image_processing.max_dimension must be positive")
	}
	switch c.App.Language {
	case "ja", "en", "both":
	default:
		return fmt.Errorf("app.language must be ja, en or both, got '%s'", c.App.Language)
	}
	if (c.S3.Endpoint == "") != (c.S3.Bucket == "") {
		return fmt.Errorf("s3.endpoint and s3.bucket must be set together")
	}
	return nil
}
