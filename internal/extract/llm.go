package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/vrsandeep/docscan/internal/logger"
	"github.com/vrsandeep/docscan/internal/models"
)

var ErrEmptyCompletion = errors.New("no response choices from model")

type LLMConfig struct {
	APIKey  string
	BaseURL string // empty means the OpenAI default
	Model   string
}

// LLM extracts fields by sending the page image and a per-category prompt
// to an OpenAI compatible chat model.
type LLM struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

func NewLLM(cfg LLMConfig) *LLM {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &LLM{
		client: openai.NewClientWithConfig(oc),
		model:  model,
		log:    logger.WithComponent("llm_extractor"),
	}
}

// RegisterLLM binds the model-backed extractor for every category.
func RegisterLLM(r *Registry, l *LLM) {
	for _, c := range models.Categories {
		r.Register(c, SourceLLM, l.Func(c))
	}
}

// Func returns the extractor for one category.
func (l *LLM) Func(category models.Category) Func {
	fields := FieldNames[category]
	prompt := buildPrompt(category, fields)
	return func(ctx context.Context, in Input) (models.Fields, error) {
		dataURL, err := imageDataURL(in.ImagePath)
		if err != nil {
			return nil, err
		}
		resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       l.model,
			Temperature: 0,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{Type: openai.ChatMessagePartTypeText, Text: prompt},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL:    dataURL,
								Detail: openai.ImageURLDetailHigh,
							},
						},
					},
				},
			},
			MaxTokens: 1000,
		})
		if err != nil {
			return nil, fmt.Errorf("chat completion for %s: %w", category, err)
		}
		if len(resp.Choices) == 0 {
			return nil, ErrEmptyCompletion
		}
		content := resp.Choices[0].Message.Content
		l.log.Debug().Str("category", string(category)).Str("response", content).Msg("Received model response")
		return parseModelFields(content, fields)
	}
}

func buildPrompt(category models.Category, fields []string) string {
	var b strings.Builder
	b.WriteString("You are an expert document parser for Indian transport documents.\n\n")
	fmt.Fprintf(&b, "Extract the following fields from this %s document:\n", category)
	for _, f := range fields {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	b.WriteString("\nRespond ONLY with a JSON object using exactly these keys. ")
	b.WriteString("Use null for any field that is not present.\n")
	return b.String()
}

func imageDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading page image: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// parseModelFields decodes the model's JSON answer into the expected fields.
// Code fences are stripped, null and "none" become empty strings and numbers
// are rendered with two decimals.
func parseModelFields(content string, fields []string) (models.Fields, error) {
	content = stripFences(content)
	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse model JSON response: %w", err)
	}
	out := make(models.Fields, len(fields))
	for _, f := range fields {
		out[f] = cleanValue(raw[f])
	}
	return out, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func cleanValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(val, 'f', 2, 64)
	case string:
		s := strings.TrimSpace(val)
		if strings.EqualFold(s, "none") || strings.EqualFold(s, "null") {
			return ""
		}
		return s
	default:
		return fmt.Sprint(val)
	}
}
