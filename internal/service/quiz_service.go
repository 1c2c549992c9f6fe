package service

import (
	"encoding/json"
	"errors"
	"math"

	"kidquiz/internal/models"
	"kidquiz/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrQuizInactive    = errors.New("quiz is not active")
	ErrQuizNoQuestions = errors.New("quiz has no questions")
	ErrBadQuestion     = errors.New("question must have 2-6 options and a correct index in range")
)

// SubmittedAnswer is one kid-selected option, keyed by question id.
type SubmittedAnswer struct {
	QuestionID          uint `json:"question_id" binding:"required"`
	SelectedOptionIndex int  `json:"selected_option_index"`
}

// QuestionResult is the per-question grading detail. PointsEarned carries the
// question's point weight for correct answers; the aggregate Score ignores it
// and counts correct answers only.
type QuestionResult struct {
	QuestionID          uint `json:"question_id"`
	IsCorrect           bool `json:"is_correct"`
	Answered            bool `json:"answered"`
	SelectedOptionIndex int  `json:"selected_option_index"`
	CorrectOptionIndex  int  `json:"correct_option_index"`
	PointsEarned        int  `json:"points_earned"`
}

// SubmissionResult is the graded outcome of one quiz attempt.
type SubmissionResult struct {
	AttemptID          uint             `json:"attempt_id"`
	QuizID             uint             `json:"quiz_id"`
	KidID              uint             `json:"kid_id"`
	Score              int              `json:"score"`
	TotalQuestions     int              `json:"total_questions"`
	AccuracyPercentage float64          `json:"accuracy_percentage"`
	DetailedResults    []QuestionResult `json:"detailed_results"`
	RewardCoins        int64            `json:"reward_coins"`
	Wallet             *WalletSnapshot  `json:"wallet,omitempty"`
}

// QuizService owns quiz CRUD and answer grading.
type QuizService struct {
	quizzes *repository.QuizRepository
	rewards *RewardService
}

func NewQuizService(quizzes *repository.QuizRepository, rewards *RewardService) *QuizService {
	return &QuizService{quizzes: quizzes, rewards: rewards}
}

// ValidateQuestions checks the set is non-empty and each question has 2-6
// options and an in-range correct index, defaulting zero point values to 10.
func ValidateQuestions(questions []models.Question) error {
	if len(questions) == 0 {
		return ErrQuizNoQuestions
	}
	for i := range questions {
		opts := questions[i].Options()
		if len(opts) < 2 || len(opts) > 6 {
			return ErrBadQuestion
		}
		if questions[i].CorrectOptionIndex < 0 || questions[i].CorrectOptionIndex >= len(opts) {
			return ErrBadQuestion
		}
		if questions[i].Points <= 0 {
			questions[i].Points = 10
		}
	}
	return nil
}

func (s *QuizService) Create(q *models.Quiz) error {
	if err := ValidateQuestions(q.Questions); err != nil {
		return err
	}
	for i := range q.Questions {
		q.Questions[i].Position = i
	}
	return s.quizzes.Create(q)
}

func (s *QuizService) GetByID(id uint) (*models.Quiz, error) {
	q, err := s.quizzes.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	return q, nil
}

func (s *QuizService) Update(q *models.Quiz) error {
	return s.quizzes.Update(q)
}

func (s *QuizService) ReplaceQuestions(quizID uint, questions []models.Question) error {
	if err := ValidateQuestions(questions); err != nil {
		return err
	}
	return s.quizzes.ReplaceQuestions(quizID, questions)
}

func (s *QuizService) Delete(id uint) error {
	return s.quizzes.Delete(id)
}

func (s *QuizService) List(f repository.QuizFilter) ([]models.Quiz, error) {
	return s.quizzes.List(f)
}

func (s *QuizService) ListAttempts(kidID uint, limit, offset int) ([]models.QuizAttempt, error) {
	return s.quizzes.ListAttempts(kidID, limit, offset)
}

// Submit grades a kid's answers against the quiz in question order. A missing
// answer counts as incorrect without error. Score is the number of correct
// answers; accuracy is correct/total*100 (0 for an empty quiz). The first
// attempt per kid and quiz pays the quiz-completion reward.
func (s *QuizService) Submit(kidID, quizID uint, answers []SubmittedAnswer) (*SubmissionResult, error) {
	quiz, err := s.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.Active {
		return nil, ErrQuizInactive
	}

	byQuestion := make(map[uint]SubmittedAnswer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	result := &SubmissionResult{
		QuizID:         quizID,
		KidID:          kidID,
		TotalQuestions: len(quiz.Questions),
	}
	for _, q := range quiz.Questions {
		qr := QuestionResult{
			QuestionID:          q.ID,
			CorrectOptionIndex:  q.CorrectOptionIndex,
			SelectedOptionIndex: -1,
		}
		if a, ok := byQuestion[q.ID]; ok {
			qr.Answered = true
			qr.SelectedOptionIndex = a.SelectedOptionIndex
			if a.SelectedOptionIndex == q.CorrectOptionIndex {
				qr.IsCorrect = true
				qr.PointsEarned = q.Points
				result.Score++
			}
		}
		result.DetailedResults = append(result.DetailedResults, qr)
	}
	if result.TotalQuestions > 0 {
		pct := float64(result.Score) / float64(result.TotalQuestions) * 100
		result.AccuracyPercentage = math.Round(pct*100) / 100
	}

	firstAttempt, err := s.quizzes.HasAttempt(kidID, quizID)
	if err != nil {
		return nil, err
	}
	firstAttempt = !firstAttempt

	// The attempt row is persisted before the reward so a failed or repeated
	// submission can never pay twice: once the row exists, HasAttempt blocks
	// any further payout for this kid and quiz.
	details, _ := json.Marshal(result.DetailedResults)
	attempt := &models.QuizAttempt{
		QuizID:             quizID,
		KidID:              kidID,
		Score:              result.Score,
		TotalQuestions:     result.TotalQuestions,
		AccuracyPercentage: result.AccuracyPercentage,
		DetailsJSON:        string(details),
	}
	if err := s.quizzes.CreateAttempt(attempt); err != nil {
		return nil, err
	}
	result.AttemptID = attempt.ID

	if firstAttempt && s.rewards != nil {
		coins, snap, err := s.rewards.ProcessQuizReward(kidID, quizID, result.AccuracyPercentage)
		if err != nil {
			return nil, err
		}
		result.RewardCoins = coins
		result.Wallet = snap
		attempt.RewardCoins = coins
		if err := s.quizzes.UpdateAttempt(attempt); err != nil {
			return nil, err
		}
	}
	return result, nil
}
