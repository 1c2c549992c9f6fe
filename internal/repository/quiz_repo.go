package repository

import (
	"errors"

	"kidquiz/internal/models"

	"gorm.io/gorm"
)

type QuizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// Create persists a quiz together with its questions.
func (r *QuizRepository) Create(q *models.Quiz) error {
	return r.db.Create(q).Error
}

func (r *QuizRepository) GetByID(id uint) (*models.Quiz, error) {
	var q models.Quiz
	err := r.db.Preload("Questions", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	}).First(&q, id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuizRepository) Update(q *models.Quiz) error {
	return r.db.Save(q).Error
}

func (r *QuizRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Quiz{}, id).Error
	})
}

// ReplaceQuestions swaps a quiz's question set in one transaction.
func (r *QuizRepository) ReplaceQuestions(quizID uint, questions []models.Question) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", quizID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].ID = 0
			questions[i].QuizID = quizID
			questions[i].Position = i
		}
		if len(questions) == 0 {
			return nil
		}
		return tx.Create(&questions).Error
	})
}

// QuizFilter narrows quiz listings.
type QuizFilter struct {
	Category   string
	Difficulty string
	GradeLevel int
	ActiveOnly bool
	Limit      int
	Offset     int
}

func (r *QuizRepository) List(f QuizFilter) ([]models.Quiz, error) {
	q := r.db.Model(&models.Quiz{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Difficulty != "" {
		q = q.Where("difficulty = ?", f.Difficulty)
	}
	if f.GradeLevel > 0 {
		q = q.Where("grade_level = ?", f.GradeLevel)
	}
	if f.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var list []models.Quiz
	err := q.Order("created_at DESC").Limit(limit).Offset(f.Offset).Find(&list).Error
	return list, err
}

func (r *QuizRepository) CreateAttempt(a *models.QuizAttempt) error {
	return r.db.Create(a).Error
}

func (r *QuizRepository) UpdateAttempt(a *models.QuizAttempt) error {
	return r.db.Save(a).Error
}

// HasAttempt reports whether the kid has already submitted this quiz.
func (r *QuizRepository) HasAttempt(kidID, quizID uint) (bool, error) {
	var a models.QuizAttempt
	err := r.db.Where("kid_id = ? AND quiz_id = ?", kidID, quizID).First(&a).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

func (r *QuizRepository) ListAttempts(kidID uint, limit, offset int) ([]models.QuizAttempt, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var list []models.QuizAttempt
	err := r.db.Where("kid_id = ?", kidID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
