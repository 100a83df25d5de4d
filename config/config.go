package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config mirrors config.yaml. Every key can be overridden from the
// environment with the CONTRACTRAG_ prefix, e.g. CONTRACTRAG_LLM_MODEL.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Uploads   UploadsConfig   `mapstructure:"uploads"`
	PDF       PDFConfig       `mapstructure:"pdf"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Vector    VectorConfig    `mapstructure:"vector"`
	OCR       OCRConfig       `mapstructure:"ocr"`
	RAG       RAGConfig       `mapstructure:"rag"`
	Letter    LetterConfig    `mapstructure:"letter"`
}

type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	BodyLimitMB int      `mapstructure:"body_limit_mb"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type UploadsConfig struct {
	Dir string `mapstructure:"dir"`
}

// PDFConfig crop margins are in points (1/72 inch). Zero disables cropping.
type PDFConfig struct {
	CropTop    float64 `mapstructure:"crop_top"`
	CropBottom float64 `mapstructure:"crop_bottom"`
}

type LLMConfig struct {
	Provider string        `mapstructure:"provider"`
	Endpoint string        `mapstructure:"endpoint"`
	Model    string        `mapstructure:"model"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type EmbeddingConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type VectorConfig struct {
	Backend   string `mapstructure:"backend"`
	DSN       string `mapstructure:"dsn"`
	Dimension int    `mapstructure:"dimension"`
}

type OCRConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Attempts int           `mapstructure:"attempts"`
}

type RAGConfig struct {
	TopK int `mapstructure:"top_k"`
}

type LetterConfig struct {
	ExcerptChars int `mapstructure:"excerpt_chars"`
}

// Load reads .env, config.yaml and the environment, in increasing priority.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.contractrag")
	v.SetEnvPrefix("CONTRACTRAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		slog.Info("no config file found, using defaults and environment")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Uploads.Dir = resolvePath(cfg.Uploads.Dir)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.body_limit_mb", 25)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("uploads.dir", "uploads")

	v.SetDefault("pdf.crop_top", 0)
	v.SetDefault("pdf.crop_bottom", 0)

	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.endpoint", "http://localhost:11434")
	v.SetDefault("llm.model", "llama3.1:8b")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.timeout", "3m")

	v.SetDefault("embedding.endpoint", "http://localhost:11434/api/embeddings")
	v.SetDefault("embedding.model", "nomic-embed-text")
	v.SetDefault("embedding.timeout", "30s")

	v.SetDefault("vector.backend", "memory")
	v.SetDefault("vector.dsn", "")
	v.SetDefault("vector.dimension", 768)

	v.SetDefault("ocr.endpoint", "http://localhost:11434/api/generate")
	v.SetDefault("ocr.model", "llava:13b")
	v.SetDefault("ocr.timeout", "5m")
	v.SetDefault("ocr.attempts", 3)

	v.SetDefault("rag.top_k", 3)

	v.SetDefault("letter.excerpt_chars", 1000)
}

// resolvePath expands a leading ~ and cleans the path.
func resolvePath(p string) string {
	if p == "" {
		return p
	}
	if p[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return filepath.Clean(p)
}
