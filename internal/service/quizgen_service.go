package service

import (
	"context"
	"errors"
	"fmt"

	"kidquiz/internal/models"
	"kidquiz/pkg/llm"
)

var ErrGenerationUnavailable = errors.New("quiz generation is not configured")

// QuizGenService builds reviewable quizzes from LLM output. Generated quizzes
// are persisted inactive so a guardian can check them before kids see them.
type QuizGenService struct {
	client  *llm.Client
	quizzes *QuizService
}

func NewQuizGenService(client *llm.Client, quizzes *QuizService) *QuizGenService {
	return &QuizGenService{client: client, quizzes: quizzes}
}

// Generate asks the model for a quiz, validates every question, and persists
// the result inactive under the requesting guardian.
func (s *QuizGenService) Generate(ctx context.Context, guardianID uint, topic, category, difficulty string, gradeLevel, questionCount int) (*models.Quiz, error) {
	if !s.client.Configured() {
		return nil, ErrGenerationUnavailable
	}
	if questionCount <= 0 {
		questionCount = 5
	}
	generated, err := s.client.GenerateQuiz(ctx, topic, category, difficulty, gradeLevel, questionCount)
	if err != nil {
		return nil, err
	}
	if len(generated) > questionCount {
		generated = generated[:questionCount]
	}
	questions := make([]models.Question, 0, len(generated))
	for i, g := range generated {
		q := models.Question{
			Position:           i,
			Text:               g.Text,
			CorrectOptionIndex: g.CorrectOptionIndex,
			Points:             10,
		}
		q.SetOptions(g.Options)
		questions = append(questions, q)
	}
	quiz := &models.Quiz{
		Title:               fmt.Sprintf("%s quiz: %s", difficulty, topic),
		Description:         fmt.Sprintf("Auto-generated quiz about %s", topic),
		Category:            category,
		Difficulty:          difficulty,
		GradeLevel:          gradeLevel,
		Active:              false,
		GeneratedByLLM:      true,
		CreatedByGuardianID: guardianID,
		Questions:           questions,
	}
	if err := s.quizzes.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}
