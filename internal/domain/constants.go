package domain

// Token roles
const (
	RoleGuardian = "GUARDIAN"
	RoleKid      = "KID"
)

// Guardian-kid link roles
const (
	LinkRoleOwner    = "OWNER"
	LinkRoleGuardian = "GUARDIAN"
	LinkRoleViewer   = "VIEWER"
)

// MaxGuardiansPerKid caps the number of guardian links a kid may have.
const MaxGuardiansPerKid = 5

// Redemption statuses
const (
	RedemptionPendingApproval = "PENDING_APPROVAL"
	RedemptionApproved        = "APPROVED"
	RedemptionRejected        = "REJECTED"
	RedemptionFulfilled       = "FULFILLED"
	RedemptionCancelled       = "CANCELLED"
)

// Redeemable item categories
const (
	ItemCategoryToy        = "TOY"
	ItemCategoryTreat      = "TREAT"
	ItemCategoryActivity   = "ACTIVITY"
	ItemCategoryScreenTime = "SCREEN_TIME"
	ItemCategoryPrivilege  = "PRIVILEGE"
	ItemCategoryOther      = "OTHER"
)

// ItemQuantityUnlimited marks a catalog item with no stock limit.
const ItemQuantityUnlimited = -1

// Quiz categories
const (
	QuizCategoryMath      = "MATH"
	QuizCategoryScience   = "SCIENCE"
	QuizCategoryReading   = "READING"
	QuizCategoryHistory   = "HISTORY"
	QuizCategoryGeography = "GEOGRAPHY"
	QuizCategoryArt       = "ART"
	QuizCategoryMusic     = "MUSIC"
	QuizCategoryGeneral   = "GENERAL"
)

// Quiz difficulties
const (
	DifficultyEasy   = "EASY"
	DifficultyMedium = "MEDIUM"
	DifficultyHard   = "HARD"
)

// Notification types
const (
	NotifRedemptionRequested = "REDEMPTION_REQUESTED"
	NotifRedemptionDecided   = "REDEMPTION_DECIDED"
	NotifLevelUp             = "LEVEL_UP"
)

// Reward amounts for the built-in earning policies.
const (
	QuizBaseCoins       = 10
	DailyLoginCoins     = 5
	AchievementGems     = 5
	LevelUpGemsPerLevel = 10
)
