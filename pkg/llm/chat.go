package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/prompts"
)

// answerTemplate keeps the model grounded in the retrieved transcript
// excerpts and forbids inline citations; sources are reported separately.
const answerTemplate = `You are analyzing entrepreneur biographies and podcast transcripts. Answer the question using ONLY the context provided below.

Context from {{.num_sources}} source(s):
{{.context}}

Question: {{.question}}

Instructions:
- Use only information explicitly stated in the context
- Synthesize insights across multiple sources when present
- Compare and contrast different approaches between entrepreneurs
- Provide specific examples and quotes
- If the context lacks information to answer fully, acknowledge what is missing
- Do not add source references, citations, or a sources section; sources are shown to the reader separately

Answer:`

// ChatConfig represents the configuration for a chat engine.
type ChatConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
	APIKey      string
	BaseURL     string
}

// ChatEngine answers questions using an OpenAI chat model over retrieved context.
type ChatEngine struct {
	config ChatConfig
	llm    llms.Model
	prompt prompts.PromptTemplate
}

// NewWithConfig creates a new ChatEngine with the given configuration.
func NewWithConfig(config ChatConfig) (*ChatEngine, error) {
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}

	opts := []openai.Option{openai.WithModel(config.Model)}
	if config.APIKey != "" {
		opts = append(opts, openai.WithToken(config.APIKey))
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &ChatEngine{
		config: config,
		llm:    model,
		prompt: prompts.NewPromptTemplate(answerTemplate, []string{"context", "question", "num_sources"}),
	}, nil
}

// Chat generates an answer for the question from the assembled context.
func (ce *ChatEngine) Chat(ctx context.Context, question, contextText string, numSources int) (string, error) {
	prompt, err := ce.prompt.Format(map[string]any{
		"context":     contextText,
		"question":    question,
		"num_sources": numSources,
	})
	if err != nil {
		return "", fmt.Errorf("failed to format prompt: %w", err)
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	response, err := ce.llm.GenerateContent(ctx, content,
		llms.WithTemperature(ce.config.Temperature),
		llms.WithMaxTokens(ce.config.MaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("chat error: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return response.Choices[0].Content, nil
}

// ChatStream generates an answer, invoking onToken for each streamed piece.
// The full answer is returned once the stream completes.
func (ce *ChatEngine) ChatStream(ctx context.Context, question, contextText string, numSources int, onToken func(string)) (string, error) {
	prompt, err := ce.prompt.Format(map[string]any{
		"context":     contextText,
		"question":    question,
		"num_sources": numSources,
	})
	if err != nil {
		return "", fmt.Errorf("failed to format prompt: %w", err)
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	response, err := ce.llm.GenerateContent(ctx, content,
		llms.WithTemperature(ce.config.Temperature),
		llms.WithMaxTokens(ce.config.MaxTokens),
		llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			if onToken != nil && len(chunk) > 0 {
				onToken(string(chunk))
			}
			return nil
		}),
	)
	if err != nil {
		return "", fmt.Errorf("chat error: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return response.Choices[0].Content, nil
}
