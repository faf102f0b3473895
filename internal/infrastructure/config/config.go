package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`

	// DedupWindow 為 0 時停用 JSON API 的去重
	DedupWindow time.Duration `mapstructure:"dedup_window"`
	LogLevel    string        `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// ArtifactsConfig 離線產出的模型檔案位置，可以是本地路徑或 http(s) URL
type ArtifactsConfig struct {
	ModelPath      string        `mapstructure:"model_path"`
	VectorizerPath string        `mapstructure:"vectorizer_path"`
	DatasetPath    string        `mapstructure:"dataset_path"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	FetchRetries   int           `mapstructure:"fetch_retries"`
}

// RecommendConfig 推薦設定
type RecommendConfig struct {
	TopK           int `mapstructure:"top_k"`
	MaxTotalTime   int `mapstructure:"max_total_time"`
	DefaultTime    int `mapstructure:"default_time"`
	// MaxIngredients 為 0 時不限制長度
	MaxIngredients int `mapstructure:"max_ingredients_length"`
}

// CacheConfig 推薦結果快取設定
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LogConfig 日誌輸出設定
type LogConfig struct {
	File string `mapstructure:"file"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時只用環境變數與預設值
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("artifacts.model_path", "MODEL_PATH")
	viper.BindEnv("artifacts.vectorizer_path", "VECTORIZER_PATH")
	viper.BindEnv("artifacts.dataset_path", "DATASET_PATH")
	viper.BindEnv("recommend.top_k", "TOP_K")
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("cache.redis_addr", "REDIS_ADDR")
	viper.BindEnv("cache.redis_password", "REDIS_PASSWORD")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("recommend.max_ingredients_length", "MAX_INGREDIENTS_LENGTH")
	viper.BindEnv("log_level", "LOG_LEVEL")
	viper.BindEnv("log.file", "LOG_FILE")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "recipe-recommender")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.request_timeout", "30s")
	viper.SetDefault("server.max_body_bytes", 1<<20) // 1MB

	// 模型檔案
	viper.SetDefault("artifacts.model_path", "model.json")
	viper.SetDefault("artifacts.vectorizer_path", "vectorizer.json")
	viper.SetDefault("artifacts.dataset_path", "pre_processed.csv")
	viper.SetDefault("artifacts.fetch_timeout", "60s")
	viper.SetDefault("artifacts.fetch_retries", 0)

	// 推薦設定
	viper.SetDefault("recommend.top_k", 10)
	viper.SetDefault("recommend.max_total_time", 120)
	viper.SetDefault("recommend.default_time", 60)
	viper.SetDefault("recommend.max_ingredients_length", 0)

	// 快取設定
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.cleanup_interval", "10m")
	viper.SetDefault("cache.redis_addr", "")
	viper.SetDefault("cache.redis_db", 0)

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	viper.SetDefault("dedup_window", "0s")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log.file", "logs/app.log")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}
	if config.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid max body bytes")
	}

	// 三個模型檔案缺一不可
	if config.Artifacts.ModelPath == "" {
		return fmt.Errorf("model path is required")
	}
	if config.Artifacts.VectorizerPath == "" {
		return fmt.Errorf("vectorizer path is required")
	}
	if config.Artifacts.DatasetPath == "" {
		return fmt.Errorf("dataset path is required")
	}
	if config.Artifacts.FetchTimeout <= 0 {
		return fmt.Errorf("invalid fetch timeout")
	}
	if config.Artifacts.FetchRetries < 0 {
		return fmt.Errorf("invalid fetch retries")
	}

	if config.Recommend.TopK <= 0 {
		return fmt.Errorf("invalid top k")
	}
	if config.Recommend.MaxTotalTime <= 0 {
		return fmt.Errorf("invalid max total time")
	}
	if config.Recommend.MaxIngredients < 0 {
		return fmt.Errorf("invalid max ingredients length")
	}
	if config.DedupWindow < 0 {
		return fmt.Errorf("invalid dedup window")
	}
	if config.Recommend.DefaultTime < 0 || config.Recommend.DefaultTime > config.Recommend.MaxTotalTime {
		return fmt.Errorf("default time must be within [0, %d]", config.Recommend.MaxTotalTime)
	}

	// 驗證快取設定
	if config.Cache.Enabled && config.Cache.RedisAddr == "" {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}
	if config.Cache.Enabled && config.Cache.TTL <= 0 {
		return fmt.Errorf("invalid cache ttl")
	}

	if config.RateLimit.Enabled {
		if config.RateLimit.Requests <= 0 {
			return fmt.Errorf("invalid rate limit requests")
		}
		if config.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit window")
		}
	}

	return nil
}

// Default 回傳只含預設值的設定，供 CLI 與測試使用
func Default() *Config {
	return &Config{
		App: AppConfig{Env: "development", Debug: true, Version: "1.0.0", Name: "recipe-recommender"},
		Server: ServerConfig{
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    120 * time.Second,
			RequestTimeout: 30 * time.Second,
			MaxBodyBytes:   1 << 20,
		},
		Artifacts: ArtifactsConfig{
			ModelPath:      "model.json",
			VectorizerPath: "vectorizer.json",
			DatasetPath:    "pre_processed.csv",
			FetchTimeout:   60 * time.Second,
		},
		Recommend: RecommendConfig{TopK: 10, MaxTotalTime: 120, DefaultTime: 60},
		Cache: CacheConfig{
			Enabled:         true,
			MaxSize:         1000,
			TTL:             24 * time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
		RateLimit: RateLimitConfig{Enabled: true, Requests: 100, Window: time.Minute},
		Log:       LogConfig{File: "logs/app.log"},
		LogLevel:  "info",
	}
}
