package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"reconcile-backend/internal/extraction"
	"reconcile-backend/internal/roles"
)

const (
	apiURL = "https://api.openai.com/v1/chat/completions"
)

// Client implements extraction.Service using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

var _ extraction.Service = (*Client)(nil)

// NewClient constructs a new OpenAI extraction client.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    *float32       `json:"temperature,omitempty"`
	ResponseFormat responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// ExtractRoles sends the document text to the model and parses the role list.
func (c *Client) ExtractRoles(ctx context.Context, req extraction.Request) ([]roles.ExtractedRole, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, &extraction.Error{Provider: "openai", Err: errors.New("empty document text")}
	}

	raw, err := c.complete(ctx, req.Text)
	if err != nil {
		return nil, &extraction.Error{Provider: "openai", Err: err}
	}

	extracted, err := parseRoles(raw)
	if err != nil {
		return nil, &extraction.Error{Provider: "openai", Err: err}
	}
	return extracted, nil
}

func (c *Client) complete(ctx context.Context, text string) (json.RawMessage, error) {
	temp := float32(0)
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPromptPrefix + text},
		},
		ResponseFormat: responseFormat{
			Type: "json_object",
		},
	}
	reqBody.Temperature = &temp
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("openai request timeout: %w", err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("openai response parse: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("openai response missing choices")
	}
	logUsage(c.model, parsed)

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return nil, fmt.Errorf("openai response empty content")
	}
	return json.RawMessage(content), nil
}

type wireEvidence struct {
	Field     string `json:"field"`
	Text      string `json:"text"`
	Page      int    `json:"page"`
	Paragraph int    `json:"paragraph"`
}

type wireRole struct {
	Company              string         `json:"company"`
	Title                string         `json:"title"`
	StartDate            string         `json:"start_date"`
	EndDate              string         `json:"end_date"`
	ManagerTitle         string         `json:"manager_title"`
	Headcount            int            `json:"headcount"`
	BudgetResponsibility string         `json:"budget_responsibility"`
	Quota                string         `json:"quota"`
	Achievements         []string       `json:"achievements"`
	Responsibilities     []string       `json:"responsibilities"`
	Confidence           float64        `json:"confidence"`
	Evidence             []wireEvidence `json:"evidence"`
}

type wirePayload struct {
	Roles []wireRole `json:"roles"`
}

func parseRoles(raw json.RawMessage) ([]roles.ExtractedRole, error) {
	var payload wirePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("role payload parse: %w", err)
	}

	out := make([]roles.ExtractedRole, 0, len(payload.Roles))
	for i, w := range payload.Roles {
		if strings.TrimSpace(w.Company) == "" && strings.TrimSpace(w.Title) == "" {
			return nil, fmt.Errorf("role %d missing company and title", i)
		}
		start, err := roles.ParseYearMonth(w.StartDate)
		if err != nil {
			return nil, fmt.Errorf("role %d: %w", i, err)
		}
		end, err := roles.ParseYearMonth(w.EndDate)
		if err != nil {
			return nil, fmt.Errorf("role %d: %w", i, err)
		}

		role := roles.ExtractedRole{
			Company:              strings.TrimSpace(w.Company),
			Title:                strings.TrimSpace(w.Title),
			StartDate:            start,
			EndDate:              end,
			ManagerTitle:         strings.TrimSpace(w.ManagerTitle),
			Headcount:            w.Headcount,
			BudgetResponsibility: strings.TrimSpace(w.BudgetResponsibility),
			Quota:                strings.TrimSpace(w.Quota),
			Achievements:         w.Achievements,
			Responsibilities:     w.Responsibilities,
			Confidence:           w.Confidence,
		}
		for _, ev := range w.Evidence {
			role.Evidence = append(role.Evidence, roles.FieldEvidence{
				Field: ev.Field,
				Text:  ev.Text,
				Span: roles.SourceSpan{
					PageNumber: ev.Page,
					Paragraph:  ev.Paragraph,
				},
			})
		}
		out = append(out, role)
	}
	return out, nil
}

func logUsage(model string, resp chatResponse) {
	if resp.Usage == nil {
		log.Printf("llm response model=%s", model)
		return
	}
	log.Printf("llm response model=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d",
		model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
}
