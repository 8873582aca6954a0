package postmark

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type PostmarkClient struct {
	baseUrl     string
	serverToken string
	httpClient  *http.Client
}

func NewPostmarkClient(serverToken string) *PostmarkClient {
	return &PostmarkClient{
		baseUrl:     "https://api.postmarkapp.com",
		serverToken: serverToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *PostmarkClient) Send(email Email) (*SendResponse, error) {
	body, err := json.Marshal(email)
	if err != nil {
		return nil, fmt.Errorf("marshal email (postmark): %w", err)
	}

	req, err := http.NewRequest("POST", c.baseUrl+"/email", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("build request (postmark): %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send email (postmark): %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body (postmark): %w", err)
	}

	// Postmark reports failures both via the HTTP status and via
	// ErrorCode in the response body.
	var sendResp SendResponse
	if err := json.Unmarshal(responseBody, &sendResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("error status (postmark): %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("parse send response (postmark): %w", err)
	}

	if resp.StatusCode != http.StatusOK || sendResp.ErrorCode != 0 {
		if sendResp.Message != "" {
			return nil, fmt.Errorf("Postmark error %d: %s", sendResp.ErrorCode, sendResp.Message)
		}
		return nil, fmt.Errorf("error status (postmark): %d", resp.StatusCode)
	}

	return &sendResp, nil
}
