package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to an OpenAI-compatible chat completions API.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.APIKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GeneratedQuestion is one model-produced quiz question.
type GeneratedQuestion struct {
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
}

type generatedQuiz struct {
	Questions []GeneratedQuestion `json:"questions"`
}

// ErrInvalidResponse marks model output that could not be parsed into questions.
var ErrInvalidResponse = errors.New("llm returned an unparsable quiz")

const systemPrompt = `You write multiple-choice quizzes for children. Respond with JSON only, shaped as
{"questions":[{"text":"...","options":["..."],"correct_option_index":0}]}.
Each question has 2 to 6 options and exactly one correct answer. Keep language age-appropriate.`

// GenerateQuiz asks the model for questionCount questions on a topic.
func (c *Client) GenerateQuiz(ctx context.Context, topic, category, difficulty string, gradeLevel, questionCount int) ([]GeneratedQuestion, error) {
	user := fmt.Sprintf("Write %d %s-difficulty %s questions about %q for grade %d students.",
		questionCount, strings.ToLower(difficulty), strings.ToLower(category), topic, gradeLevel)
	body, _ := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
		Temperature:    0.7,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llm chat completion failed: %d %s", resp.StatusCode, string(respBody))
	}
	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, ErrInvalidResponse
	}
	var quiz generatedQuiz
	if err := json.Unmarshal([]byte(out.Choices[0].Message.Content), &quiz); err != nil {
		return nil, ErrInvalidResponse
	}
	if len(quiz.Questions) == 0 {
		return nil, ErrInvalidResponse
	}
	return quiz.Questions, nil
}
