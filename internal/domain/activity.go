package domain

import "fmt"

// TransactionType classifies a ledger row.
type TransactionType string

const (
	TxEarned    TransactionType = "EARNED"
	TxSpent     TransactionType = "SPENT"
	TxBonus     TransactionType = "BONUS"
	TxPenalty   TransactionType = "PENALTY"
	TxConverted TransactionType = "CONVERTED"
	TxExpired   TransactionType = "EXPIRED"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TxEarned, TxSpent, TxBonus, TxPenalty, TxConverted, TxExpired:
		return true
	}
	return false
}

// ActivityType records what a kid did to move their balance.
type ActivityType string

const (
	ActivityQuizCompleted     ActivityType = "QUIZ_COMPLETED"
	ActivityQuizPerfectScore  ActivityType = "QUIZ_PERFECT_SCORE"
	ActivityDailyLogin        ActivityType = "DAILY_LOGIN"
	ActivityWeeklyStreak      ActivityType = "WEEKLY_STREAK"
	ActivityLevelUp           ActivityType = "LEVEL_UP"
	ActivityAchievement       ActivityType = "ACHIEVEMENT"
	ActivityChallenge         ActivityType = "CHALLENGE"
	ActivityHomeworkCompleted ActivityType = "HOMEWORK_COMPLETED"
	ActivityReadingTime       ActivityType = "READING_TIME"
	ActivityCreativeActivity  ActivityType = "CREATIVE_ACTIVITY"
	ActivityRedemption        ActivityType = "REDEMPTION"
	ActivityParentBonus       ActivityType = "PARENT_BONUS"
	ActivitySpecialEvent      ActivityType = "SPECIAL_EVENT"
	ActivityBonus             ActivityType = "BONUS"
	ActivityPenalty           ActivityType = "PENALTY"
)

func (a ActivityType) Valid() bool {
	switch a {
	case ActivityQuizCompleted, ActivityQuizPerfectScore, ActivityDailyLogin,
		ActivityWeeklyStreak, ActivityLevelUp, ActivityAchievement,
		ActivityChallenge, ActivityHomeworkCompleted, ActivityReadingTime,
		ActivityCreativeActivity, ActivityRedemption, ActivityParentBonus,
		ActivitySpecialEvent, ActivityBonus, ActivityPenalty:
		return true
	}
	return false
}

func ParseActivity(s string) (ActivityType, error) {
	a := ActivityType(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown activity type %q", s)
	}
	return a, nil
}
