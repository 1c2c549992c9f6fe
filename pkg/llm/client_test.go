package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatReply(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

func TestGenerateQuizParsesQuestions(t *testing.T) {
	content := `{"questions":[
		{"text":"2+2?","options":["3","4"],"correct_option_index":1},
		{"text":"3+3?","options":["6","7","8"],"correct_option_index":0}
	]}`
	srv := httptest.NewServer(chatReply(t, content))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "test-model")
	questions, err := c.GenerateQuiz(context.Background(), "addition", "MATH", "EASY", 2, 2)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "2+2?", questions[0].Text)
	assert.Equal(t, []string{"3", "4"}, questions[0].Options)
	assert.Equal(t, 1, questions[0].CorrectOptionIndex)
}

func TestGenerateQuizUnparsableContent(t *testing.T) {
	srv := httptest.NewServer(chatReply(t, "sorry, I cannot write JSON today"))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "test-model")
	_, err := c.GenerateQuiz(context.Background(), "addition", "MATH", "EASY", 2, 2)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestGenerateQuizEmptyQuestions(t *testing.T) {
	srv := httptest.NewServer(chatReply(t, `{"questions":[]}`))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "test-model")
	_, err := c.GenerateQuiz(context.Background(), "addition", "MATH", "EASY", 2, 2)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestGenerateQuizUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "test-model")
	_, err := c.GenerateQuiz(context.Background(), "addition", "MATH", "EASY", 2, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestConfigured(t *testing.T) {
	assert.False(t, NewClient("", "", "m").Configured())
	assert.True(t, NewClient("", "key", "m").Configured())

	var nilClient *Client
	assert.False(t, nilClient.Configured())
}
