package factory

import (
	"fmt"

	"ai-organizer-be/internal/config"
	"ai-organizer-be/pkg/provider"
	"ai-organizer-be/pkg/provider/huggingface"
	"ai-organizer-be/pkg/provider/ollama"
)

func NewLLMProvider(providerType string, cfg config.AIConfig) (provider.LLMProvider, error) {
	switch providerType {
	case "ollama":
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.OllamaModel), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(cfg.HuggingFaceKey, cfg.HuggingFaceURL, cfg.HuggingFaceModel), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
