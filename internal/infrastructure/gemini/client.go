package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const maxIcebreakers = 3

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-1.5-pro")
	model.SetTemperature(0.7)

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func describe(u *domain.User) string {
	seeking := make([]string, 0, len(u.LookingFor))
	for _, g := range u.LookingFor {
		seeking = append(seeking, string(g))
	}
	return fmt.Sprintf("name=%q gender=%s looking_for=%s", u.Name, u.Gender, strings.Join(seeking, ","))
}

// GenerateIcebreakers asks the model for opening lines user a could send to
// user b after they matched.
func (c *GeminiClient) GenerateIcebreakers(ctx context.Context, a, b *domain.User) ([]string, error) {
	prompt := fmt.Sprintf(`
		Generate %d creative icebreaker messages for a dating app match.
		User 1: %s
		User 2: %s

		Task: Create distinct, friendly opening lines that User 1 could send to User 2.
		Keep each under 140 characters.
		Output: JSON array of strings. Example: ["Hi...", "Hello..."]
	`, maxIcebreakers, describe(a), describe(b))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	return parseIcebreakers(sb.String())
}

// parseIcebreakers accepts a JSON array, optionally fenced as markdown, and
// falls back to one line per icebreaker.
func parseIcebreakers(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var icebreakers []string
	if err := json.Unmarshal([]byte(text), &icebreakers); err != nil {
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "[") && !strings.HasSuffix(line, "]") {
				icebreakers = append(icebreakers, line)
			}
		}
		if len(icebreakers) == 0 {
			return nil, fmt.Errorf("failed to parse icebreakers: %w", err)
		}
	}

	out := make([]string, 0, maxIcebreakers)
	for _, line := range icebreakers {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
		if len(out) == maxIcebreakers {
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no icebreakers in response")
	}
	return out, nil
}
