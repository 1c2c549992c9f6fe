package service

import (
	"testing"

	"kidquiz/internal/domain"
	"kidquiz/internal/models"
	"kidquiz/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newQuizService(db *gorm.DB) *QuizService {
	return NewQuizService(repository.NewQuizRepository(db), newRewardService(db))
}

func question(text string, correct int, opts ...string) models.Question {
	q := models.Question{Text: text, CorrectOptionIndex: correct}
	q.SetOptions(opts)
	return q
}

func createQuiz(t *testing.T, svc *QuizService, questions ...models.Question) *models.Quiz {
	t.Helper()
	quiz := &models.Quiz{
		Title:      "Arithmetic basics",
		Category:   domain.QuizCategoryMath,
		Difficulty: domain.DifficultyEasy,
		GradeLevel: 2,
		Active:     true,
		Questions:  questions,
	}
	require.NoError(t, svc.Create(quiz))
	return quiz
}

func TestValidateQuestions(t *testing.T) {
	assert.ErrorIs(t, ValidateQuestions(nil), ErrQuizNoQuestions)

	bad := []models.Question{question("pick", 0, "only one")}
	assert.ErrorIs(t, ValidateQuestions(bad), ErrBadQuestion)

	bad = []models.Question{question("pick", 2, "a", "b")}
	assert.ErrorIs(t, ValidateQuestions(bad), ErrBadQuestion)

	bad = []models.Question{question("pick", -1, "a", "b")}
	assert.ErrorIs(t, ValidateQuestions(bad), ErrBadQuestion)

	ok := []models.Question{question("pick", 1, "a", "b", "c")}
	require.NoError(t, ValidateQuestions(ok))
	assert.Equal(t, 10, ok[0].Points, "zero points default to 10")
}

func TestSubmitGradesInQuestionOrder(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	kid := createKid(t, db, "Ada")
	quiz := createQuiz(t, svc,
		question("2+2", 1, "3", "4", "5"),
		question("3*3", 2, "6", "8", "9"),
		question("10-4", 0, "6", "7", "8"),
	)

	res, err := svc.Submit(kid.ID, quiz.ID, []SubmittedAnswer{
		{QuestionID: quiz.Questions[0].ID, SelectedOptionIndex: 1},
		{QuestionID: quiz.Questions[1].ID, SelectedOptionIndex: 0},
		{QuestionID: quiz.Questions[2].ID, SelectedOptionIndex: 0},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Score)
	assert.Equal(t, 3, res.TotalQuestions)
	assert.Equal(t, 66.67, res.AccuracyPercentage)
	require.Len(t, res.DetailedResults, 3)
	assert.True(t, res.DetailedResults[0].IsCorrect)
	assert.False(t, res.DetailedResults[1].IsCorrect)
	assert.True(t, res.DetailedResults[2].IsCorrect)
	assert.Equal(t, 10, res.DetailedResults[0].PointsEarned)
	assert.Equal(t, 0, res.DetailedResults[1].PointsEarned)
}

func TestSubmitUnansweredCountsIncorrect(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	kid := createKid(t, db, "Ben")
	quiz := createQuiz(t, svc,
		question("2+2", 1, "3", "4"),
		question("3*3", 1, "8", "9"),
	)

	res, err := svc.Submit(kid.ID, quiz.ID, []SubmittedAnswer{
		{QuestionID: quiz.Questions[0].ID, SelectedOptionIndex: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 50.0, res.AccuracyPercentage)
	assert.False(t, res.DetailedResults[1].Answered)
	assert.Equal(t, -1, res.DetailedResults[1].SelectedOptionIndex)
}

func TestSubmitRewardsFirstAttemptOnly(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	kid := createKid(t, db, "Cleo")
	quiz := createQuiz(t, svc, question("2+2", 1, "3", "4"))

	res, err := svc.Submit(kid.ID, quiz.ID, []SubmittedAnswer{
		{QuestionID: quiz.Questions[0].ID, SelectedOptionIndex: 1},
	})
	require.NoError(t, err)
	// Perfect score: 10 base + 20 accuracy bonus.
	assert.Equal(t, int64(30), res.RewardCoins)
	require.NotNil(t, res.Wallet)
	assert.Equal(t, int64(30), res.Wallet.Coins)

	res, err = svc.Submit(kid.ID, quiz.ID, []SubmittedAnswer{
		{QuestionID: quiz.Questions[0].ID, SelectedOptionIndex: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.RewardCoins, "retakes pay nothing")
	assert.Nil(t, res.Wallet)

	attempts, err := svc.ListAttempts(kid.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
}

func TestSubmitInactiveQuiz(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	kid := createKid(t, db, "Dina")
	quiz := createQuiz(t, svc, question("2+2", 1, "3", "4"))
	quiz.Active = false
	require.NoError(t, svc.Update(quiz))

	_, err := svc.Submit(kid.ID, quiz.ID, nil)
	assert.ErrorIs(t, err, ErrQuizInactive)

	_, err = svc.Submit(kid.ID, 9999, nil)
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestReplaceQuestionsKeepsOrder(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	quiz := createQuiz(t, svc, question("old", 0, "a", "b"))

	require.NoError(t, svc.ReplaceQuestions(quiz.ID, []models.Question{
		question("first", 0, "a", "b"),
		question("second", 1, "a", "b"),
	}))

	got, err := svc.GetByID(quiz.ID)
	require.NoError(t, err)
	require.Len(t, got.Questions, 2)
	assert.Equal(t, "first", got.Questions[0].Text)
	assert.Equal(t, 0, got.Questions[0].Position)
	assert.Equal(t, "second", got.Questions[1].Text)
	assert.Equal(t, 1, got.Questions[1].Position)
}

func TestListFiltersByCategoryAndActive(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	createQuiz(t, svc, question("2+2", 1, "3", "4"))
	science := &models.Quiz{
		Title:      "Planets",
		Category:   domain.QuizCategoryScience,
		Difficulty: domain.DifficultyMedium,
		Active:     false,
		Questions:  []models.Question{question("red planet", 0, "Mars", "Venus")},
	}
	require.NoError(t, svc.Create(science))

	got, err := svc.List(repository.QuizFilter{Category: domain.QuizCategoryMath})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Arithmetic basics", got[0].Title)

	got, err = svc.List(repository.QuizFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.List(repository.QuizFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCreatePersistsInactiveQuiz(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	quiz := &models.Quiz{
		Title:      "Draft quiz",
		Category:   domain.QuizCategoryMath,
		Difficulty: domain.DifficultyEasy,
		GradeLevel: 1,
		Active:     false,
		Questions:  []models.Question{question("2+2", 1, "3", "4")},
	}
	require.NoError(t, svc.Create(quiz))

	stored, err := svc.GetByID(quiz.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active, "inactive quiz must stay inactive after create")
}

func TestSubmitFailedAttemptWritePaysNothing(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	kid := createKid(t, db, "Finn")
	quiz := createQuiz(t, svc, question("2+2", 1, "3", "4"))
	answers := []SubmittedAnswer{{QuestionID: quiz.Questions[0].ID, SelectedOptionIndex: 1}}

	require.NoError(t, db.Exec(`CREATE TRIGGER block_attempts BEFORE INSERT ON quiz_attempts
		BEGIN SELECT RAISE(ABORT, 'attempts unavailable'); END`).Error)

	_, err := svc.Submit(kid.ID, quiz.ID, answers)
	require.Error(t, err)
	assert.Empty(t, ledgerFor(t, db, kid.ID), "no reward without a recorded attempt")

	require.NoError(t, db.Exec(`DROP TRIGGER block_attempts`).Error)

	res, err := svc.Submit(kid.ID, quiz.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, int64(30), res.RewardCoins)

	res, err = svc.Submit(kid.ID, quiz.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.RewardCoins)

	var earned []models.WalletTransaction
	require.NoError(t, db.Where("kid_id = ? AND type = ?", kid.ID, domain.TxEarned).Find(&earned).Error)
	assert.Len(t, earned, 1, "the quiz reward is paid exactly once")

	attempts, err := svc.ListAttempts(kid.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
}
