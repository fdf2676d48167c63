package ai

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

const GeminiBaseURL = "https://generativelanguage.googleapis.com"

// Gemini calls the generateContent endpoint.
type Gemini struct {
	baseURL string
	client  *http.Client
}

func NewGemini(baseURL string, client *http.Client) *Gemini {
	return &Gemini{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction geminiContent   `json:"systemInstruction"`
	Contents          []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	payload := geminiRequest{
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: systemPrompt(req)}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.UserPrompt}}}},
	}

	endpoint := g.baseURL + "/v1beta/models/" + url.PathEscape(req.Model) + ":generateContent"

	var resp geminiResponse
	if err := postJSON(ctx, g.client, KindGemini, endpoint, map[string]string{"x-goog-api-key": req.APIKey}, payload, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	if text.Len() == 0 {
		return "", ErrEmptyResponse
	}

	return text.String(), nil
}
