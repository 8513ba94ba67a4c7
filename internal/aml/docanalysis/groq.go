package docanalysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/clearwater-labs/amlguard/internal/aml"
)

const documentPrompt = `Analyze these documents for AML risks. Respond with RISK CODES from:
- INVOICE_MISMATCH
- PHANTOM_SHIPMENT
- PROHIBITED_GOODS
- SHELL_COMPANY
- DARKNET_CONNECTION
- TRADE_BASED_LAUNDERING

After the risk codes, list involved entity names one per line prefixed with "ENTITY:".

Documents:
`

// Client calls an OpenAI-compatible chat-completions endpoint (Groq by
// default) to analyze document text.
type Client struct {
	logger     *zap.SugaredLogger
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
}

// NewClient creates the chat-completions client. The request deadline comes
// from the caller's context; the stage applies the configured timeout.
func NewClient(cfg aml.LLMConfig, apiKey string, logger *zap.SugaredLogger) *Client {
	return &Client{
		logger:     logger,
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		apiKey:     apiKey,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// AnalyzeDocument implements Analyzer.
func (c *Client) AnalyzeDocument(ctx context.Context, text string) (*Analysis, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("document analyzer: no API key configured")
	}

	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: documentPrompt + text}},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("document analyzer: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("document analyzer: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("document analyzer: %w", err)
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("document analyzer: decoding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return nil, fmt.Errorf("document analyzer: upstream error: %s", parsed.Error.Message)
		}
		return nil, fmt.Errorf("document analyzer: upstream status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("document analyzer: empty completion")
	}

	content := parsed.Choices[0].Message.Content
	c.logger.Debugw("document analysis completed", "model", c.model, "chars", len(content))
	return &Analysis{
		RiskNotes: content,
		Entities:  parseEntities(content),
	}, nil
}

func parseEntities(content string) []string {
	var entities []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if name, ok := strings.CutPrefix(line, "ENTITY:"); ok {
			if name = strings.TrimSpace(name); name != "" {
				entities = append(entities, name)
			}
		}
	}
	return entities
}
