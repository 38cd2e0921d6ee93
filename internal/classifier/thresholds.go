package classifier

// Thresholds holds the tuned constants of the rule cascade
type Thresholds struct {
	StrongSpamMatches      int
	SpamScore              int
	UppercaseRatio         float64
	UppercaseMinLength     int
	EntertainmentScore     int
	WorkContextMatches     int
	MarketingStrongMatches int
	MarketingIndicators    int
	MarketingScore         int
	MarketingRegexScore    int
	ThanksMaxWords         int
	GratitudeScore         int
	GratitudeMaxWords      int
	UrgencyExclamations    int
	AIFallbackConfidence   float64
	BaseConfidence         float64
	MaxConfidence          float64
	DefaultConfidence      float64
}

// DefaultThresholds returns the values the cascade was tuned with
func DefaultThresholds() Thresholds {
	return Thresholds{
		StrongSpamMatches:      2,
		SpamScore:              8,
		UppercaseRatio:         0.30,
		UppercaseMinLength:     20,
		EntertainmentScore:     6,
		WorkContextMatches:     2,
		MarketingStrongMatches: 2,
		MarketingIndicators:    2,
		MarketingScore:         6,
		MarketingRegexScore:    4,
		ThanksMaxWords:         100,
		GratitudeScore:         3,
		GratitudeMaxWords:      50,
		UrgencyExclamations:    2,
		AIFallbackConfidence:   0.70,
		BaseConfidence:         0.70,
		MaxConfidence:          0.95,
		DefaultConfidence:      0.75,
	}
}

// Rule confidences
const (
	confidenceStrongSpam          = 0.98
	confidenceKeywordSpam         = 0.95
	confidenceEntertainmentRegex  = 0.95
	confidenceEntertainmentScore  = 0.92
	confidenceMarketingRegex      = 0.96
	confidenceMarketingScore      = 0.93
	confidenceThanks              = 0.95
	confidenceGratitude           = 0.90
	confidenceGenuineCongratulate = 0.92
)
