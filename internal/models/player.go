package models

// PendingRepeat is a missed question waiting to be asked again.
type PendingRepeat struct {
	ID            string `json:"id"`
	Question      string `json:"question"`
	CorrectAnswer int    `json:"correctAnswer"`
	AddedAt       int64  `json:"addedAt"` // unix millis
}

// IncorrectAnswer is one entry of the capped wrong-answer log.
type IncorrectAnswer struct {
	ID            string `json:"id"`
	Question      string `json:"question"`
	CorrectAnswer int    `json:"correctAnswer"`
	GivenAnswer   int    `json:"givenAnswer"`
	Timestamp     int64  `json:"timestamp"` // unix millis
}

// QuestionStat counts attempts and mistakes for one multiplication fact.
type QuestionStat struct {
	Attempts int `json:"attempts"`
	Mistakes int `json:"mistakes"`
}

// QuestionStats is keyed by question text, e.g. "7 × 8".
type QuestionStats map[string]QuestionStat

type Player struct {
	Name      string `json:"name"`
	HighScore int    `json:"high_score"`
}

// PlayerOverview is what the settings screen shows for the selected player.
type PlayerOverview struct {
	Player
	IncorrectAnswers []IncorrectAnswer `json:"incorrect_answers"`
	PendingRepeats   []PendingRepeat   `json:"pending_repeats"`
	BestResult       *GameResult       `json:"best_result,omitempty"`
}
