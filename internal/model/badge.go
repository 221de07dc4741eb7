package model

// BadgeID identifies an achievement badge
type BadgeID int

// BadgeType is the achievement category of a badge
type BadgeType string

const (
	BadgeTypeDuration           BadgeType = "duration"
	BadgeTypeWins               BadgeType = "wins"
	BadgeTypeSessions           BadgeType = "sessions"
	BadgeTypeDifferentGames     BadgeType = "differentGames"
	BadgeTypeSameGame           BadgeType = "sameGame"
	BadgeTypeWinPercentage      BadgeType = "winPercentage"
	BadgeTypeSocialPlayer       BadgeType = "socialPlayer"
	BadgeTypeCloseWin           BadgeType = "closeWin"
	BadgeTypeCloseLoss          BadgeType = "closeLoss"
	BadgeTypeLearningExperience BadgeType = "learningExperience"
	BadgeTypeMonthlyGoal        BadgeType = "monthlyGoal"
	BadgeTypeConsistentSchedule BadgeType = "consistentSchedule"
	BadgeTypeMarathonRunner     BadgeType = "marathonRunner"
	BadgeTypeFirstTry           BadgeType = "firstTry"
)

// BadgeLevel is the tier of a badge; the empty level means untiered
type BadgeLevel string

const (
	BadgeLevelNone  BadgeLevel = ""
	BadgeLevelGreen BadgeLevel = "green"
	BadgeLevelBlue  BadgeLevel = "blue"
	BadgeLevelRed   BadgeLevel = "red"
	BadgeLevelGold  BadgeLevel = "gold"
)

// Rank orders levels from untiered (0) to gold (4)
func (l BadgeLevel) Rank() int {
	switch l {
	case BadgeLevelGreen:
		return 1
	case BadgeLevelBlue:
		return 2
	case BadgeLevelRed:
		return 3
	case BadgeLevelGold:
		return 4
	default:
		return 0
	}
}

// Badge is an achievement awarded to a player based on play history
type Badge struct {
	ID             BadgeID    `json:"id"`
	Type           BadgeType  `json:"type"`
	Level          BadgeLevel `json:"level,omitempty"`
	TitleKey       string     `json:"titleKey"`
	DescriptionKey string     `json:"descriptionKey"`
	Image          string     `json:"image,omitempty"`
}
