package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type Quiz struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Title               string         `gorm:"size:255;not null" json:"title"`
	Description         string         `gorm:"type:text" json:"description"`
	Category            string         `gorm:"size:20;not null;index" json:"category"`
	Difficulty          string         `gorm:"size:10;not null;index" json:"difficulty"`
	GradeLevel          int            `gorm:"not null" json:"grade_level"`
	Active              bool           `gorm:"not null;index" json:"active"`
	GeneratedByLLM      bool           `gorm:"not null" json:"generated_by_llm"`
	CreatedByGuardianID uint           `gorm:"index" json:"created_by_guardian_id"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	Questions []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// Question is one multiple-choice question. Options are stored as a JSON
// array; CorrectOptionIndex points into it.
type Question struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	QuizID             uint           `gorm:"not null;index" json:"quiz_id"`
	Position           int            `gorm:"not null" json:"position"`
	Text               string         `gorm:"type:text;not null" json:"text"`
	OptionsJSON        string         `gorm:"type:text;not null" json:"-"`
	CorrectOptionIndex int            `gorm:"not null" json:"correct_option_index"`
	Points             int            `gorm:"not null" json:"points"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Question) TableName() string {
	return "quiz_questions"
}

func (q *Question) Options() []string {
	var opts []string
	_ = json.Unmarshal([]byte(q.OptionsJSON), &opts)
	return opts
}

func (q *Question) SetOptions(opts []string) {
	b, _ := json.Marshal(opts)
	q.OptionsJSON = string(b)
}
