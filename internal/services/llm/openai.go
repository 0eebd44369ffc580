package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog/log"
)

const systemPrompt = `You analyze travel queries. Reply with a single JSON object, nothing else:
{"needs_weather": bool, "needs_places": bool, "location": string}
needs_weather: the user asks about weather, temperature, rain or forecast.
needs_places: the user asks about attractions, sights or things to do.
location: the place name mentioned in the query, or "" if none.`

type OpenAIAnalyzer struct {
	client openai.Client
	model  string
}

func NewOpenAIAnalyzer(apiKey, model string) (*OpenAIAnalyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAIAnalyzer{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// Analyze asks the model for intent flags and a location. The response is
// free-form text with a JSON object embedded somewhere in it.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, query string) (*Analysis, error) {
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(query),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices from OpenAI")
	}

	analysis, err := ParseAnalysis(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("location", analysis.Location).
		Bool("needs_weather", analysis.NeedsWeather).
		Bool("needs_places", analysis.NeedsPlaces).
		Msg("LLM analysis")
	return analysis, nil
}
