package models

import "time"

// Ways a run can end.
const (
	EndReasonGameOver  = "gameover"
	EndReasonAbandoned = "abandoned"
)

// GameResult is one finished run.
type GameResult struct {
	ID                int64     `json:"id"`
	SessionID         string    `json:"session_id"`
	Player            string    `json:"player"`
	Score             int       `json:"score"`
	QuestionsAnswered int       `json:"questions_answered"`
	Lanes             int       `json:"lanes"`
	CarSpeed          int       `json:"car_speed"`
	EndReason         string    `json:"end_reason"`
	StartedAt         time.Time `json:"started_at"`
	EndedAt           time.Time `json:"ended_at"`
}

type ResultFilter struct {
	Player    string
	EndReason string
	Since     *time.Time
	Limit     int
	Offset    int
}
