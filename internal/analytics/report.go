package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-analytics/internal/domain"
	"github.com/phrazzld/scry-analytics/internal/scoring"
)

// TimeRange selects how much session history feeds the summary, metrics and
// pattern blocks of a report.
type TimeRange string

// Supported report ranges.
const (
	RangeWeek    TimeRange = "week"
	RangeMonth   TimeRange = "month"
	RangeQuarter TimeRange = "quarter"
	RangeAll     TimeRange = "all"
)

// Valid reports whether r is a supported range.
func (r TimeRange) Valid() bool {
	switch r {
	case RangeWeek, RangeMonth, RangeQuarter, RangeAll:
		return true
	default:
		return false
	}
}

// Days returns the length of the range in days, or 0 for RangeAll.
func (r TimeRange) Days() int {
	switch r {
	case RangeWeek:
		return 7
	case RangeMonth:
		return 30
	case RangeQuarter:
		return 90
	default:
		return 0
	}
}

// ParseTimeRange parses s, treating the empty string as RangeAll.
func ParseTimeRange(s string) (TimeRange, error) {
	if s == "" {
		return RangeAll, nil
	}
	r := TimeRange(s)
	if !r.Valid() {
		return "", domain.NewValidationError("range", "must be one of week, month, quarter, all", nil)
	}
	return r, nil
}

// Report is the analytics dashboard for one user. It is built fresh on every
// request and never persisted.
type Report struct {
	UserID          uuid.UUID             `json:"user_id"`
	Range           TimeRange             `json:"range"`
	GeneratedAt     time.Time             `json:"generated_at"`
	Summary         Summary               `json:"summary"`
	Insights        []Insight             `json:"insights"`
	Metrics         PerformanceMetrics    `json:"metrics"`
	Patterns        []StudyPattern        `json:"patterns"`
	Goals           []domain.LearningGoal `json:"goals"`
	Recommendations []Recommendation      `json:"recommendations"`
	Trends          []Trend               `json:"trends"`
	Predictions     Predictions           `json:"predictions"`
	Comparisons     Comparisons           `json:"comparisons"`
}

// Summary holds headline totals.
type Summary struct {
	TotalSessions     int                   `json:"total_sessions"`
	CompletedSessions int                   `json:"completed_sessions"`
	TotalCardsStudied int                   `json:"total_cards_studied"`
	TotalStudyMinutes float64               `json:"total_study_minutes"`
	AverageAccuracy   float64               `json:"average_accuracy"`
	CurrentStreak     int                   `json:"current_streak"`
	TotalScore        int                   `json:"total_score"`
	Level             domain.Level          `json:"level"`
	LevelProgress     scoring.LevelProgress `json:"level_progress"`
	CardsTracked      int                   `json:"cards_tracked"`
	CardsMastered     int                   `json:"cards_mastered"`
	SessionsLast7Days int                   `json:"sessions_last_7_days"`
}

// InsightType classifies an Insight.
type InsightType string

// Insight types.
const (
	InsightStrength InsightType = "strength"
	InsightWeakness InsightType = "weakness"
	InsightPattern  InsightType = "pattern"
)

// Valid reports whether t is a declared insight type.
func (t InsightType) Valid() bool {
	switch t {
	case InsightStrength, InsightWeakness, InsightPattern:
		return true
	default:
		return false
	}
}

// Severity ranks how urgent an Insight is.
type Severity string

// Severity tiers.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Valid reports whether s is a declared severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	default:
		return false
	}
}

// Insight is a qualitative finding about the user's performance.
type Insight struct {
	ID          string      `json:"id"`
	Type        InsightType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Severity    Severity    `json:"severity"`
	Actionable  bool        `json:"actionable"`
	Confidence  float64     `json:"confidence"`
	Data        InsightData `json:"data"`
}

// InsightData is the statistic that triggered an insight.
type InsightData struct {
	Metric    string      `json:"metric"`
	Value     float64     `json:"value"`
	Threshold float64     `json:"threshold"`
	CardIDs   []uuid.UUID `json:"card_ids,omitempty"`
}

// PerformanceMetrics groups accuracy, speed, retention and engagement figures.
type PerformanceMetrics struct {
	Accuracy   AccuracyMetrics   `json:"accuracy"`
	Speed      SpeedMetrics      `json:"speed"`
	Retention  RetentionMetrics  `json:"retention"`
	Engagement EngagementMetrics `json:"engagement"`
}

type AccuracyMetrics struct {
	Overall float64                      `json:"overall"`
	Recent  float64                      `json:"recent"`
	Trend   TrendDirection               `json:"trend"`
	ByMode  map[domain.StudyMode]float64 `json:"by_mode"`
}

type SpeedMetrics struct {
	AverageResponseSeconds float64 `json:"average_response_seconds"`
	CardsPerMinute         float64 `json:"cards_per_minute"`
}

type RetentionMetrics struct {
	MasteryRate            float64 `json:"mastery_rate"`
	AverageDaysSinceReview float64 `json:"average_days_since_review"`
	CardsAtRisk            int     `json:"cards_at_risk"`
}

type EngagementMetrics struct {
	SessionsPerWeek       float64 `json:"sessions_per_week"`
	AverageSessionMinutes float64 `json:"average_session_minutes"`
	ActiveDays            int     `json:"active_days"`
	LongestGapDays        int     `json:"longest_gap_days"`
	StudyDayStreak        int     `json:"study_day_streak"`
}

// PatternType classifies a StudyPattern.
type PatternType string

// Pattern types.
const (
	PatternTimeOfDay PatternType = "time_of_day"
	PatternDayOfWeek PatternType = "day_of_week"
)

// StudyPattern describes when the user tends to study and how well those
// sessions go. Peaks holds hours (0-23) or weekdays (0 is Sunday).
type StudyPattern struct {
	Type                   PatternType `json:"type"`
	Description            string      `json:"description"`
	Peaks                  []int       `json:"peaks"`
	Frequency              float64     `json:"frequency"`
	Distribution           []float64   `json:"distribution"`
	AverageSessionMinutes  float64     `json:"average_session_minutes"`
	AverageCardsPerSession float64     `json:"average_cards_per_session"`
	Effectiveness          float64     `json:"effectiveness"`
}

// RecommendationType classifies a Recommendation.
type RecommendationType string

// Recommendation types.
const (
	RecommendationSession  RecommendationType = "session"
	RecommendationCard     RecommendationType = "card"
	RecommendationSchedule RecommendationType = "schedule"
)

// Valid reports whether t is a declared recommendation type.
func (t RecommendationType) Valid() bool {
	switch t {
	case RecommendationSession, RecommendationCard, RecommendationSchedule:
		return true
	default:
		return false
	}
}

// Priority orders recommendations.
type Priority string

// Priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is a declared priority.
func (p Priority) Valid() bool {
	return p.rank() >= 0
}

// rank sorts high first.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return -1
	}
}

// ActionType is what a recommendation asks the user to do.
type ActionType string

// Action types.
const (
	ActionStartSession   ActionType = "start_session"
	ActionPracticeCards  ActionType = "practice_cards"
	ActionReviewCards    ActionType = "review_cards"
	ActionAdjustSchedule ActionType = "adjust_schedule"
)

// Valid reports whether a is a declared action type.
func (a ActionType) Valid() bool {
	switch a {
	case ActionStartSession, ActionPracticeCards, ActionReviewCards, ActionAdjustSchedule:
		return true
	default:
		return false
	}
}

// Recommendation is an actionable suggestion with an estimated benefit and a
// validity window.
type Recommendation struct {
	ID          string             `json:"id"`
	Type        RecommendationType `json:"type"`
	Priority    Priority           `json:"priority"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Reasoning   string             `json:"reasoning"`
	Action      Action             `json:"action"`
	Benefit     Benefit            `json:"benefit"`
	ValidFrom   time.Time          `json:"valid_from"`
	ValidUntil  time.Time          `json:"valid_until"`
}

// Action is the structured payload of a recommendation.
type Action struct {
	Type       ActionType       `json:"type"`
	Parameters ActionParameters `json:"parameters"`
}

type ActionParameters struct {
	Mode                  domain.StudyMode `json:"mode,omitempty"`
	CardIDs               []uuid.UUID      `json:"card_ids,omitempty"`
	CardCount             int              `json:"card_count,omitempty"`
	TargetSessionsPerWeek int              `json:"target_sessions_per_week,omitempty"`
	PreferredHour         *int             `json:"preferred_hour,omitempty"`
}

type Benefit struct {
	AccuracyImprovement   float64 `json:"accuracy_improvement"`
	RetentionImprovement  float64 `json:"retention_improvement"`
	TimeToCompleteMinutes int     `json:"time_to_complete_minutes"`
}

// TrendDirection is the classification of a series.
type TrendDirection string

// Trend directions.
const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// Valid reports whether d is a declared direction.
func (d TrendDirection) Valid() bool {
	switch d {
	case TrendImproving, TrendDeclining, TrendStable:
		return true
	default:
		return false
	}
}

// Period is the stride of a trend series.
type Period string

// Periods.
const (
	PeriodDay  Period = "day"
	PeriodWeek Period = "week"
)

// Point is one gap-filled entry of a series.
type Point struct {
	Start time.Time `json:"start"`
	Value float64   `json:"value"`
}

// Trend is a classified time series. Significance is a descriptive
// confidence proxy in [0, 1], not a statistical test.
type Trend struct {
	Metric        string         `json:"metric"`
	Period        Period         `json:"period"`
	Direction     TrendDirection `json:"direction"`
	ChangePercent float64        `json:"change_percent"`
	Significance  float64        `json:"significance"`
	Points        []Point        `json:"points"`
}

// RiskLevel classifies how likely a card is to be forgotten soon.
type RiskLevel string

// Risk levels.
const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// Valid reports whether r is a declared risk level.
func (r RiskLevel) Valid() bool {
	return r.rank() >= 0
}

func (r RiskLevel) rank() int {
	switch r {
	case RiskHigh:
		return 0
	case RiskMedium:
		return 1
	case RiskLow:
		return 2
	default:
		return -1
	}
}

// Predictions groups the forward-looking estimates.
type Predictions struct {
	Mastery        []MasteryPrediction `json:"mastery"`
	ForgettingRisk []ForgettingRisk    `json:"forgetting_risk"`
	OptimalSession OptimalSession      `json:"optimal_session"`
}

// MasteryPrediction estimates when a card will cross the mastery bar.
type MasteryPrediction struct {
	CardID          uuid.UUID `json:"card_id"`
	CurrentAccuracy float64   `json:"current_accuracy"`
	SessionsNeeded  int       `json:"sessions_needed"`
	PredictedDate   time.Time `json:"predicted_date"`
	Confidence      float64   `json:"confidence"`
}

// ForgettingRisk is the staleness assessment of one card.
type ForgettingRisk struct {
	CardID            uuid.UUID `json:"card_id"`
	DaysSinceReview   int       `json:"days_since_review"`
	Accuracy          float64   `json:"accuracy"`
	Risk              RiskLevel `json:"risk"`
	ForgettingDate    time.Time `json:"forgetting_date"`
	ReviewRecommended bool      `json:"review_recommended"`
}

// OptimalSession is the suggested next study session.
type OptimalSession struct {
	RecommendedAt    time.Time   `json:"recommended_at"`
	Hour             int         `json:"hour"`
	ExpectedAccuracy float64     `json:"expected_accuracy"`
	CardIDs          []uuid.UUID `json:"card_ids"`
	Reason           string      `json:"reason"`
}

// Comparisons places the user against peers and against their own past.
type Comparisons struct {
	PeerPercentile      float64              `json:"peer_percentile"`
	PeerAverageAccuracy float64              `json:"peer_average_accuracy"`
	Historical          HistoricalComparison `json:"historical"`
	ConsistencyScore    float64              `json:"consistency_score"`
	Milestones          []Milestone          `json:"milestones"`
}

// HistoricalComparison compares the earliest sessions with the latest ones.
// Every field is zero when there is not enough history.
type HistoricalComparison struct {
	SessionsCompared    int     `json:"sessions_compared"`
	EarlyAccuracy       float64 `json:"early_accuracy"`
	RecentAccuracy      float64 `json:"recent_accuracy"`
	AccuracyImprovement float64 `json:"accuracy_improvement"`
}

// MilestoneType names an achievement.
type MilestoneType string

// Milestones.
const (
	MilestoneStreak   MilestoneType = "study_streak"
	MilestoneAccuracy MilestoneType = "high_accuracy"
)

type Milestone struct {
	Type  MilestoneType `json:"type"`
	Title string        `json:"title"`
	Value float64       `json:"value"`
}
