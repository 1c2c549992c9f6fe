package models

import (
	"time"

	"kidquiz/internal/domain"

	"gorm.io/gorm"
)

type Kid struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:64;not null" json:"name"`
	BirthDate   *time.Time     `json:"birth_date"`
	GradeLevel  int            `gorm:"not null" json:"grade_level"`
	AvatarURL   string         `gorm:"size:512" json:"avatar_url"`
	AvatarColor string         `gorm:"size:16" json:"avatar_color"`
	Active      bool           `gorm:"not null" json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Guardians []GuardianKid `gorm:"foreignKey:KidID" json:"guardians,omitempty"`
	Settings  *KidSettings  `gorm:"foreignKey:KidID" json:"settings,omitempty"`
	Wallet    *Wallet       `gorm:"foreignKey:KidID" json:"wallet,omitempty"`
}

func (Kid) TableName() string {
	return "kids"
}

// GuardianKid links a guardian to a kid with a role (OWNER | GUARDIAN | VIEWER).
// The guardian who creates a kid is its OWNER; a kid holds at most
// domain.MaxGuardiansPerKid links.
type GuardianKid struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	GuardianID uint           `gorm:"not null;index;uniqueIndex:idx_guardian_kid" json:"guardian_id"`
	KidID      uint           `gorm:"not null;index;uniqueIndex:idx_guardian_kid" json:"kid_id"`
	Role       string         `gorm:"size:20;not null" json:"role"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Guardian Guardian `gorm:"foreignKey:GuardianID" json:"-"`
	Kid      Kid      `gorm:"foreignKey:KidID" json:"-"`
}

func (GuardianKid) TableName() string {
	return "guardian_kids"
}

// CanManage reports whether this link allows balance-affecting actions
// (approving redemptions, granting bonuses).
func (l *GuardianKid) CanManage() bool {
	return l.Role == domain.LinkRoleOwner || l.Role == domain.LinkRoleGuardian
}

// KidSettings is the closed per-kid configuration set. Keys are fixed columns
// rather than an open property bag.
type KidSettings struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	KidID                  uint      `gorm:"uniqueIndex;not null" json:"kid_id"`
	DailyScreenTimeMinutes int       `gorm:"not null" json:"daily_screen_time_minutes"`
	AllowedQuizCategories  string    `gorm:"size:255" json:"allowed_quiz_categories"` // comma-separated; empty = all
	NotificationsEnabled   bool      `gorm:"not null" json:"notifications_enabled"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (KidSettings) TableName() string {
	return "kid_settings"
}
