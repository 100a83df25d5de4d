package api

import (
	"contractrag/config"

	"github.com/gofiber/fiber/v2"
)

// ConfigView is the effective configuration without endpoints or secrets.
type ConfigView struct {
	LLMProvider    string `json:"llm_provider"`
	LLMModel       string `json:"llm_model"`
	EmbeddingModel string `json:"embedding_model"`
	OCRModel       string `json:"ocr_model"`
	VectorBackend  string `json:"vector_backend"`
	TopK           int    `json:"top_k"`
	ExcerptChars   int    `json:"excerpt_chars"`
}

type ConfigHandler struct {
	view ConfigView
}

func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		view: ConfigView{
			LLMProvider:    cfg.LLM.Provider,
			LLMModel:       cfg.LLM.Model,
			EmbeddingModel: cfg.Embedding.Model,
			OCRModel:       cfg.OCR.Model,
			VectorBackend:  cfg.Vector.Backend,
			TopK:           cfg.RAG.TopK,
			ExcerptChars:   cfg.Letter.ExcerptChars,
		},
	}
}

func (h *ConfigHandler) HandleGetConfig(c *fiber.Ctx) error {
	return c.JSON(h.view)
}
