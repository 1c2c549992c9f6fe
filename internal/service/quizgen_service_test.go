package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"kidquiz/internal/domain"
	"kidquiz/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSavesInactiveQuiz(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":
			"{\"questions\":[{\"text\":\"2+2?\",\"options\":[\"3\",\"4\"],\"correct_option_index\":1},{\"text\":\"5+5?\",\"options\":[\"10\",\"11\"],\"correct_option_index\":0},{\"text\":\"1+1?\",\"options\":[\"2\",\"3\"],\"correct_option_index\":0}]}"
		}}]}`))
	}))
	defer srv.Close()

	db := newTestDB(t)
	quizzes := newQuizService(db)
	gen := NewQuizGenService(llm.NewClient(srv.URL, "test-key", "test-model"), quizzes)

	quiz, err := gen.Generate(context.Background(), 9, "addition", domain.QuizCategoryMath, domain.DifficultyEasy, 2, 2)
	require.NoError(t, err)

	assert.False(t, quiz.Active, "generated quizzes need guardian review")
	assert.True(t, quiz.GeneratedByLLM)
	assert.Equal(t, uint(9), quiz.CreatedByGuardianID)
	assert.Len(t, quiz.Questions, 2, "extra model questions are dropped")

	got, err := quizzes.GetByID(quiz.ID)
	require.NoError(t, err)
	require.Len(t, got.Questions, 2)
	assert.Equal(t, "2+2?", got.Questions[0].Text)
	assert.Equal(t, []string{"3", "4"}, got.Questions[0].Options())
}

func TestGenerateUnconfigured(t *testing.T) {
	db := newTestDB(t)
	gen := NewQuizGenService(llm.NewClient("", "", ""), newQuizService(db))

	_, err := gen.Generate(context.Background(), 1, "addition", domain.QuizCategoryMath, domain.DifficultyEasy, 2, 2)
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
}

func TestGenerateRejectsBadModelOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// One option only: fails question validation after parsing.
		w.Write([]byte(`{"choices":[{"message":{"content":
			"{\"questions\":[{\"text\":\"2+2?\",\"options\":[\"4\"],\"correct_option_index\":0}]}"
		}}]}`))
	}))
	defer srv.Close()

	db := newTestDB(t)
	gen := NewQuizGenService(llm.NewClient(srv.URL, "test-key", "test-model"), newQuizService(db))

	_, err := gen.Generate(context.Background(), 1, "addition", domain.QuizCategoryMath, domain.DifficultyEasy, 2, 2)
	assert.ErrorIs(t, err, ErrBadQuestion)
}
