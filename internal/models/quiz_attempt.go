package models

import (
	"time"

	"gorm.io/gorm"
)

// QuizAttempt records one submission. Score is the count of correct answers;
// per-question point weights live only in the detailed results (they are
// tracked but deliberately not aggregated into Score).
type QuizAttempt struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	QuizID             uint           `gorm:"not null;index" json:"quiz_id"`
	KidID              uint           `gorm:"not null;index" json:"kid_id"`
	Score              int            `gorm:"not null" json:"score"`
	TotalQuestions     int            `gorm:"not null" json:"total_questions"`
	AccuracyPercentage float64        `gorm:"not null" json:"accuracy_percentage"`
	RewardCoins        int64          `gorm:"not null;default:0" json:"reward_coins"`
	DetailsJSON        string         `gorm:"type:text" json:"-"`
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	Quiz Quiz `gorm:"foreignKey:QuizID" json:"-"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
