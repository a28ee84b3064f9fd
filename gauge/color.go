package gauge

const (
	SuccessColor = "#22c55e"
	WarningColor = "#eab308"
	DangerColor  = "#ef4444"
	TrackColor   = "#22223b"
)

// Level is the qualitative band a score falls into.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
)

// LevelFor maps a 0-100 score to its band: >= 80 success, >= 50 warning, else danger.
func LevelFor(score int) Level {
	switch {
	case score >= 80:
		return LevelSuccess
	case score >= 50:
		return LevelWarning
	default:
		return LevelDanger
	}
}

// Color returns the display color for a score.
func Color(score int) string {
	switch LevelFor(score) {
	case LevelSuccess:
		return SuccessColor
	case LevelWarning:
		return WarningColor
	default:
		return DangerColor
	}
}
