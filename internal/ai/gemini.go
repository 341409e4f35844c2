package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tripgen/internal/config"
)

// GeminiProvider implements LLMProvider using Google's Gemini SDK.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider initializes a Gemini client from cfg.
// The API key must come from configuration; there is no built-in default.
func NewGeminiProvider(ctx context.Context, cfg config.AIConfig) (*GeminiProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &ConfigurationError{Field: "GEMINI_API_KEY", Reason: "is not set"}
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, &ConfigurationError{Field: "model", Reason: "is empty"}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(float32(cfg.Temperature))
	model.SetTopK(int32(cfg.TopK))
	model.SetTopP(float32(cfg.TopP))
	model.SetMaxOutputTokens(int32(cfg.MaxOutputTokens))
	if cfg.JSONMode {
		// Fences still show up occasionally; the extractor copes with both.
		model.ResponseMIMEType = "application/json"
	}

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// Generate sends prompt as a single user turn and returns the first candidate's text.
func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		terr := classifySDKError(err)
		log.Printf("ai: gemini generate failed: %v", terr)
		return "", terr
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &TransportError{Kind: ErrEmptyResponse, Raw: rawResponse(resp)}
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", &TransportError{Kind: ErrEmptyResponse, Raw: rawResponse(resp)}
	}
	return text.String(), nil
}

func rawResponse(resp *genai.GenerateContentResponse) string {
	b, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf("%+v", resp)
	}
	return string(b)
}

// classifySDKError maps an SDK error onto the TransportError kinds. The SDK
// reports HTTP failures as googleapi errors (often wrapped in an apierror) and
// gRPC failures as status errors.
func classifySDKError(err error) *TransportError {
	raw := err.Error()
	code := 0

	var herr *googleapi.Error
	if errors.As(err, &herr) {
		code = herr.Code
		if herr.Body != "" {
			raw = herr.Body
		}
	}

	if ae, ok := apierror.FromError(err); ok {
		if c := ae.HTTPCode(); c > 0 {
			code = c
		}
		if ae.Reason() == "API_KEY_INVALID" {
			return &TransportError{Kind: ErrAuth, Status: code, Raw: raw, Err: err}
		}
		if code == 0 && ae.GRPCStatus() != nil {
			return &TransportError{Kind: kindForCode(ae.GRPCStatus().Code()), Raw: raw, Err: err}
		}
	}

	if code == 0 {
		if st, ok := status.FromError(err); ok {
			return &TransportError{Kind: kindForCode(st.Code()), Raw: raw, Err: err}
		}
	}
	return &TransportError{Kind: kindForStatus(code, raw), Status: code, Raw: raw, Err: err}
}

func kindForCode(c codes.Code) error {
	switch c {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrAuth
	case codes.ResourceExhausted:
		return ErrRateLimit
	default:
		return ErrProvider
	}
}
