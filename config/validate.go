package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server address cannot be empty")
	}
	if _, err := net.ResolveTCPAddr("tcp", c.Server.Addr); err != nil {
		return fmt.Errorf("invalid server address: %v", err)
	}
	if c.Uploads.Dir == "" {
		return errors.New("uploads dir cannot be empty")
	}
	if c.PDF.CropTop < 0 || c.PDF.CropBottom < 0 {
		return errors.New("pdf crop margins cannot be negative")
	}

	switch c.LLM.Provider {
	case "ollama":
	case "openai":
		if c.LLM.APIKey == "" {
			return errors.New("llm api key cannot be empty for the openai provider")
		}
	default:
		return fmt.Errorf("unknown llm provider: %q", c.LLM.Provider)
	}
	if err := checkURL("llm endpoint", c.LLM.Endpoint); err != nil {
		return err
	}
	if c.LLM.Model == "" {
		return errors.New("llm model cannot be empty")
	}

	if err := checkURL("embedding endpoint", c.Embedding.Endpoint); err != nil {
		return err
	}
	if err := checkURL("ocr endpoint", c.OCR.Endpoint); err != nil {
		return err
	}
	if c.OCR.Attempts <= 0 {
		return errors.New("ocr attempts must be positive")
	}

	switch c.Vector.Backend {
	case "memory":
	case "pgvector":
		if c.Vector.DSN == "" {
			return errors.New("vector dsn cannot be empty for the pgvector backend")
		}
		if c.Vector.Dimension <= 0 {
			return errors.New("vector dimension must be positive")
		}
	default:
		return fmt.Errorf("unknown vector backend: %q", c.Vector.Backend)
	}

	if c.RAG.TopK <= 0 {
		return errors.New("rag top_k must be positive")
	}
	if c.Letter.ExcerptChars < 0 {
		return errors.New("letter excerpt_chars cannot be negative")
	}
	return nil
}

func checkURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s: %q", name, raw)
	}
	return nil
}
