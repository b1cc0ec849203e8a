package modelgw

import (
	"context"
	"errors"
	"strings"
	"time"

	"medical-calendar/internal/platform/httpclient"
	"medical-calendar/internal/ports/assistant"
)

var (
	ErrNotConfigured = errors.New("assistant gateway not configured")
	ErrEmptyReply    = errors.New("assistant returned empty reply")
)

// systemPrompt fija el rol del asistente: soporte de medicación, nunca
// consejo médico personalizado.
const systemPrompt = `You are MediCal Assistant, a helpful AI chatbot specialized in medication support and healthcare guidance. You help users with medication reminders, understanding their medication schedules, general information about common medications, and questions about using the MediCal app.

Important guidelines:
- Always remind users to consult their doctor or pharmacist for specific medical advice
- Never diagnose conditions or recommend specific treatments
- If asked about serious medical concerns, always recommend contacting a healthcare provider immediately
- Use simple, clear language; many users may be elderly or managing multiple medications.`

// Config del gateway. BaseURL y APIKey vienen de env en quien lo instancia.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client habla con un API estilo chat-completions (JSON, sin streaming) y
// implementa el port assistant.Assistant.
type Client struct {
	http   *httpclient.Client
	apiKey string
	model  string
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}

	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o"
	}

	return &Client{
		http:   hc,
		apiKey: strings.TrimSpace(cfg.APIKey),
		model:  model,
	}, nil
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) Reply(ctx context.Context, messages []assistant.Message) (string, error) {
	if c == nil || c.http == nil {
		return "", ErrNotConfigured
	}

	wire := make([]wireMessage, 0, len(messages)+1)
	wire = append(wire, wireMessage{Role: "system", Content: systemPrompt})
	for _, m := range messages {
		role := strings.TrimSpace(m.Role)
		if role != "user" && role != "assistant" {
			continue
		}
		wire = append(wire, wireMessage{Role: role, Content: m.Content})
	}

	var out completionResponse
	err := c.http.DoJSON(ctx, "POST", "/v1/chat/completions",
		map[string]string{"Authorization": "Bearer " + c.apiKey},
		completionRequest{Model: c.model, Messages: wire},
		&out,
	)
	if err != nil {
		return "", err
	}

	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyReply
	}
	return out.Choices[0].Message.Content, nil
}
