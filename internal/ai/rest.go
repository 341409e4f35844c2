package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tripgen/internal/config"
)

// restHTTPClient bounds a stalled connection; the caller's context still
// cancels earlier via NewRequestWithContext.
var restHTTPClient = &http.Client{Timeout: 2 * time.Minute}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopK             int     `json:"topK"`
	TopP             float64 `json:"topP"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content *content `json:"content"`
	} `json:"candidates"`
}

// RESTProvider calls the Gemini generateContent endpoint over plain HTTP.
type RESTProvider struct {
	endpoint string
	apiKey   string
	body     generationConfig
	client   *http.Client
}

// NewRESTProvider validates cfg and prepares the endpoint URL. No request is made.
func NewRESTProvider(cfg config.AIConfig) (*RESTProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &ConfigurationError{Field: "GEMINI_API_KEY", Reason: "is not set"}
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, &ConfigurationError{Field: "model", Reason: "is empty"}
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, &ConfigurationError{Field: "base url", Reason: fmt.Sprintf("%q is not an absolute URL", cfg.BaseURL)}
	}

	gc := generationConfig{
		Temperature:     cfg.Temperature,
		TopK:            cfg.TopK,
		TopP:            cfg.TopP,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}
	if cfg.JSONMode {
		gc.ResponseMIMEType = "application/json"
	}
	return &RESTProvider{
		endpoint: base.String() + "/models/" + url.PathEscape(cfg.Model) + ":generateContent",
		apiKey:   cfg.APIKey,
		body:     gc,
		client:   restHTTPClient,
	}, nil
}

// Generate posts prompt and returns the text of the first candidate.
func (p *RESTProvider) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: p.body,
	})
	if err != nil {
		return "", fmt.Errorf("gemini rest: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("gemini rest: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &TransportError{Kind: ErrProvider, Raw: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Kind: ErrProvider, Status: resp.StatusCode, Raw: err.Error(), Err: err}
	}
	raw := string(body)
	log.Printf("ai: gemini rest status=%d bytes=%d", resp.StatusCode, len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &TransportError{Kind: kindForStatus(resp.StatusCode, raw), Status: resp.StatusCode, Raw: raw}
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", &TransportError{Kind: ErrProvider, Status: resp.StatusCode, Raw: raw}
	}
	if len(gr.Candidates) == 0 || gr.Candidates[0].Content == nil {
		return "", &TransportError{Kind: ErrEmptyResponse, Status: resp.StatusCode, Raw: raw}
	}

	var text strings.Builder
	for _, pt := range gr.Candidates[0].Content.Parts {
		text.WriteString(pt.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", &TransportError{Kind: ErrEmptyResponse, Status: resp.StatusCode, Raw: raw}
	}
	return text.String(), nil
}
