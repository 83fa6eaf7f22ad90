package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// RawSuggestion is the JSON the model is asked to return
type RawSuggestion struct {
	Category    string  `json:"category"`
	EstimatedKg float64 `json:"estimated_kg"`
	Title       string  `json:"title"`
}

// Analyzer turns a photo into a material suggestion
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, mimeType string) (*RawSuggestion, error)
}

type GeminiAnalyzer struct {
	client *genai.Client
	model  string
}

func NewGeminiAnalyzer(ctx context.Context, apiKey, model string) (*GeminiAnalyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiAnalyzer{client: client, model: model}, nil
}

func buildPrompt(categories []string) string {
	return `Look at this photo of recyclable scrap material that a household wants to sell. Return ONLY valid JSON.

			Choose the single best matching category from this list: ` + strings.Join(categories, ", ") + `.
			Estimate the total weight in kilograms of everything visible. Write a short listing title.

			Required JSON format:
			{
			"category": string,       // one of the categories above, exactly as written
			"estimated_kg": number,   // positive number
			"title": string           // at most 60 characters
			}`
}

func (g *GeminiAnalyzer) Analyze(ctx context.Context, image []byte, mimeType string) (*RawSuggestion, error) {
	content := &genai.Content{
		Parts: []*genai.Part{
			{Text: buildPrompt(categoryNames())},
			{InlineData: &genai.Blob{
				MIMEType: mimeType,
				Data:     image,
			}},
		},
	}

	result, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		[]*genai.Content{content},
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr(float32(0.1)),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no content generated")
	}

	responseText := result.Candidates[0].Content.Parts[0].Text
	if responseText == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	return parseSuggestion(responseText)
}

func parseSuggestion(responseText string) (*RawSuggestion, error) {
	jsonText := extractJSONFromMarkdown(responseText)

	var raw RawSuggestion
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w, response: %s", err, jsonText)
	}
	return &raw, nil
}

// extractJSONFromMarkdown strips a ``` or ```json fence around the payload
func extractJSONFromMarkdown(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") && strings.HasSuffix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
		return strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") {
		lines := strings.Split(text, "\n")
		if len(lines) > 1 {
			return strings.Join(lines[1:len(lines)-1], "\n")
		}
	}

	return text
}
