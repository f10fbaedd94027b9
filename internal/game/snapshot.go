package game

import "github.com/tvandenbrink/tafel-racer/internal/track"

// Snapshot is everything a renderer needs to draw one frame.
type Snapshot struct {
	SessionID         string           `json:"session_id,omitempty"`
	Phase             Phase            `json:"phase"`
	Player            string           `json:"player"`
	Lanes             int              `json:"lanes"`
	Score             int              `json:"score"`
	Lives             int              `json:"lives"`
	HighScore         int              `json:"high_score"`
	QuestionsAnswered int              `json:"questions_answered"`
	Question          string           `json:"question,omitempty"`
	Gates             []track.Gate     `json:"gates"`
	Obstacles         []track.Obstacle `json:"obstacles"`
	CarLane           int              `json:"car_lane"`
	Countdown         int              `json:"countdown"`
	Invincible        bool             `json:"invincible"`
	Boost             bool             `json:"boost"`
	RedFlash          bool             `json:"red_flash"`
	GreenFlash        bool             `json:"green_flash"`
	CorrectAnswer     *CorrectAnswer   `json:"correct_answer,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID:         s.id,
		Phase:             s.phase,
		Player:            s.settings.Player,
		Lanes:             s.settings.Lanes,
		Score:             s.score,
		Lives:             s.lives,
		HighScore:         s.highScore,
		QuestionsAnswered: s.answered,
		Question:          s.questionText(),
		Gates:             s.track.Gates(),
		Obstacles:         s.track.Obstacles(),
		CarLane:           s.carLane,
		Countdown:         s.countdown,
		Invincible:        s.invincible,
		Boost:             s.boost,
		RedFlash:          s.redFlash,
		GreenFlash:        s.greenFlash,
	}
	if snap.Gates == nil {
		snap.Gates = []track.Gate{}
	}
	if snap.Obstacles == nil {
		snap.Obstacles = []track.Obstacle{}
	}
	if s.correctAnswer != nil {
		ca := *s.correctAnswer
		snap.CorrectAnswer = &ca
	}
	return snap
}
