package models

// FactStat is one cell of the 10×10 practice grid.
type FactStat struct {
	Question    string  `json:"question"`
	Table       int     `json:"table"`
	Multiplier  int     `json:"multiplier"`
	Answer      int     `json:"answer"`
	Attempts    int     `json:"attempts"`
	Mistakes    int     `json:"mistakes"`
	SuccessRate float64 `json:"success_rate"` // percent, one decimal; 0 when never attempted
}

type StatsGrid struct {
	Player             string     `json:"player"`
	Facts              []FactStat `json:"facts"`
	TotalAttempts      int        `json:"total_attempts"`
	TotalMistakes      int        `json:"total_mistakes"`
	OverallSuccessRate float64    `json:"overall_success_rate"`
}
