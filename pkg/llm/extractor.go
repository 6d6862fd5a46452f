// Package llm extracts events from page text with an OpenAI-compatible chat model.
// It is the last resort of the generic strategy, used only when enabled in config.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/sashabaranov/go-openai"

	"github.com/umputun/venuescope/pkg/config"
	"github.com/umputun/venuescope/pkg/domain"
)

const maxAttempts = 3

// errBadJSON marks responses worth asking for again
var errBadJSON = errors.New("bad json in llm response")

// Extractor asks the model to list events found in page text
type Extractor struct {
	client    *openai.Client
	config    config.LLMConfig
	systemMsg string
}

// NewExtractor creates a new LLM event extractor
func NewExtractor(cfg config.LLMConfig) *Extractor {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}

	systemMsg := cfg.SystemPrompt
	if systemMsg == "" {
		systemMsg = defaultSystemPrompt
	}

	return &Extractor{
		client:    openai.NewClientWithConfig(clientConfig),
		config:    cfg,
		systemMsg: systemMsg,
	}
}

const defaultSystemPrompt = `You extract upcoming events from the text of a venue web page.
Return every distinct event the text announces. For each event give:
- title: event name, required
- description: one or two sentences from the text, optional
- date: event date as YYYY-MM-DD when the text allows, otherwise as written
- time: start time as HH:MM (24h) when known
- location: venue, room or address when mentioned
- price: price text as written, e.g. "$25" or "Free"
- url: link to the event page when present in the text
- category: short genre or type, e.g. "music", "comedy", "workshop"

Never invent events or fields that are not in the text. Leave unknown fields out.
If the page has no events, return an empty list.`

// llmEvent is the shape the model is asked to produce
type llmEvent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Price       string `json:"price"`
	URL         string `json:"url"`
	Category    string `json:"category"`
}

// ExtractEvents sends page text to the model and returns titled events
func (e *Extractor) ExtractEvents(ctx context.Context, pageURL, text string) ([]domain.Event, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []domain.Event{}, nil
	}
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	prompt := e.buildPrompt(pageURL, text)

	// retry up to 3 times if we get invalid JSON
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		chatReq := openai.ChatCompletionRequest{
			Model:       e.config.Model,
			Temperature: float32(e.config.Temperature),
			MaxTokens:   e.config.MaxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: e.systemMsg},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		}
		if e.config.UseJSONMode {
			chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			}
		}

		resp, err := e.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			return nil, fmt.Errorf("llm request failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("no response from llm")
		}

		events, err := e.parseResponse(resp.Choices[0].Message.Content, pageURL)
		if err == nil {
			lgr.Printf("[DEBUG] llm found %d events on %s", len(events), pageURL)
			return events, nil
		}
		lastErr = err
		if !errors.Is(err, errBadJSON) {
			return nil, err
		}
		lgr.Printf("[DEBUG] llm attempt %d for %s: %v", attempt+1, pageURL, err)
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}

func (e *Extractor) buildPrompt(pageURL, text string) string {
	if limit := e.config.MaxContentChars; limit > 0 {
		if runes := []rune(text); len(runes) > limit {
			text = string(runes[:limit]) + "..."
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Page URL: %s\n\n", pageURL))
	sb.WriteString("Page text:\n")
	sb.WriteString(text)
	sb.WriteString("\n\n")
	if e.config.UseJSONMode {
		sb.WriteString("Respond with a JSON object containing an 'events' array of event objects.")
	} else {
		sb.WriteString("Respond with a JSON array of event objects.")
	}
	return sb.String()
}

// parseResponse decodes the model answer, dropping events without a title
func (e *Extractor) parseResponse(content, pageURL string) ([]domain.Event, error) {
	var items []llmEvent

	if e.config.UseJSONMode {
		var resp struct {
			Events []llmEvent `json:"events"`
		}
		if err := json.Unmarshal([]byte(content), &resp); err != nil {
			return nil, fmt.Errorf("%w: %v", errBadJSON, err)
		}
		items = resp.Events
	} else {
		start := strings.Index(content, "[")
		end := strings.LastIndex(content, "]")
		if start == -1 || end == -1 || start >= end {
			return nil, fmt.Errorf("%w: no json array found", errBadJSON)
		}
		if err := json.Unmarshal([]byte(content[start:end+1]), &items); err != nil {
			return nil, fmt.Errorf("%w: %v", errBadJSON, err)
		}
	}

	res := make([]domain.Event, 0, len(items))
	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			continue
		}
		ev := domain.Event{
			Title:       title,
			Description: strings.TrimSpace(it.Description),
			Date:        strings.TrimSpace(it.Date),
			Time:        strings.TrimSpace(it.Time),
			Location:    strings.TrimSpace(it.Location),
			Price:       strings.TrimSpace(it.Price),
			Category:    strings.TrimSpace(it.Category),
			SourceURL:   strings.TrimSpace(it.URL),
			Method:      domain.StrategyGeneric,
		}
		if ev.SourceURL == "" {
			ev.SourceURL = pageURL
		}
		res = append(res, ev)
	}
	return res, nil
}
