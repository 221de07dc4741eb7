package model

// Settings is the process-wide display configuration
type Settings struct {
	DateFormat string `json:"dateFormat"`
	TimeFormat string `json:"timeFormat"`
	Currency   string `json:"currency"`
	Language   string `json:"language"`
}

// DefaultSettings are used until the backend answers
func DefaultSettings() Settings {
	return Settings{
		DateFormat: "DD-MM-YYYY",
		TimeFormat: "HH:mm",
		Currency:   "EUR",
		Language:   "en-US",
	}
}

// Language is a selectable UI language
type Language struct {
	Key            string `json:"key"`
	TranslationKey string `json:"translationKey"`
}

// Environment describes the backend deployment
type Environment struct {
	EnvironmentName  string `json:"environmentName"`
	Version          string `json:"version"`
	EnableStatistics bool   `json:"enableStatistics"`
}
