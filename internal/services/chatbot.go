package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"

// The assistant only answers dental questions; everything else is refused.
const chatbotSystemPrompt = `You are a medical assistant for a dental school clinic. ` +
	`Only answer dental-related questions. If the question is unrelated to dentistry, politely refuse.`

type geminiRequestPart struct {
	Text string `json:"text"`
}

type geminiRequestContent struct {
	Role  string              `json:"role"`
	Parts []geminiRequestPart `json:"parts"`
}

type geminiRequestBody struct {
	Contents []geminiRequestContent `json:"contents"`
}

type geminiResponseBody struct {
	Candidates []struct {
		Content struct {
			Parts []geminiRequestPart `json:"parts"`
			Role  string              `json:"role"`
		} `json:"content"`
	} `json:"candidates"`
}

// ChatbotService proxies prompts to the Gemini generateContent API with a
// fixed dental-domain instruction.
type ChatbotService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewChatbotService(apiKey string) *ChatbotService {
	return &ChatbotService{
		apiKey:  apiKey,
		baseURL: defaultGeminiURL,
		client:  &http.Client{},
	}
}

// NewChatbotServiceWithURL points the service at a different endpoint. Used
// by tests.
func NewChatbotServiceWithURL(apiKey, baseURL string) *ChatbotService {
	s := NewChatbotService(apiKey)
	s.baseURL = baseURL
	return s
}

// Generate sends the user message to the model and returns the reply text.
func (s *ChatbotService) Generate(ctx context.Context, message string) (string, error) {
	requestBody := geminiRequestBody{
		Contents: []geminiRequestContent{
			{
				Role:  "user",
				Parts: []geminiRequestPart{{Text: chatbotSystemPrompt}},
			},
			{
				Role:  "model",
				Parts: []geminiRequestPart{{Text: "Understood. I will only answer dental-related questions."}},
			},
			{
				Role:  "user",
				Parts: []geminiRequestPart{{Text: message}},
			},
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", err
	}

	url := s.baseURL + "?key=" + s.apiKey
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", err
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat service returned status %d", httpResp.StatusCode)
	}

	var geminiResp geminiResponseBody
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return "", err
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("chat service returned an empty response")
	}

	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}
