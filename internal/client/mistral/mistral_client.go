package mistral

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type MistralClient struct {
	baseUrl    string
	apiKey     string
	httpClient *http.Client
}

func NewMistralClient(apiKey string) *MistralClient {
	return &MistralClient{
		baseUrl: "https://api.mistral.ai/v1",
		apiKey:  apiKey,
		// Completions with tool calls can take a while.
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *MistralClient) Complete(request ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request (mistral): %w", err)
	}

	req, err := http.NewRequest("POST", c.baseUrl+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("build request (mistral): %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat completion (mistral): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read error body (mistral): %w", err)
		}

		var apiErr APIError
		if err := json.Unmarshal(errorBody, &apiErr); err != nil || apiErr.Message == "" {
			return nil, fmt.Errorf("error status (mistral): %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("Mistral error: %s", apiErr.Message)
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body (mistral): %w", err)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(responseBody, &chatResp); err != nil {
		return nil, fmt.Errorf("parse chat response (mistral): %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices (mistral)")
	}

	return &chatResp, nil
}
