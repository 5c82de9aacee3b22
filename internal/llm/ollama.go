package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

// OllamaProvider calls a local Ollama server's /api/generate endpoint.
// Small local models are cheap enough to run per posting.
type OllamaProvider struct {
	baseURL    string
	modelName  string
	httpClient *http.Client
}

// NewOllamaProvider creates a provider targeting an Ollama server.
func NewOllamaProvider(baseURL, modelName string, httpClient *http.Client) *OllamaProvider {
	return &OllamaProvider{
		baseURL:    baseURL,
		modelName:  modelName,
		httpClient: httpClient,
	}
}

// generateRequest mirrors the Ollama /api/generate request body.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Complete sends prompt to Ollama and returns the generated text.
func (p *OllamaProvider) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Model:  p.modelName,
		Prompt: prompt,
		Stream: false,
		// Near-greedy sampling: classification prompts want determinism.
		Options: generateOptions{Temperature: 0.1, TopP: 0.1},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read ollama response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &model.HTTPError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("ollama: %s", string(respBytes)),
		}
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBytes, &genResp); err != nil {
		return "", fmt.Errorf("parse ollama response: %w", err)
	}

	return genResp.Response, nil
}
