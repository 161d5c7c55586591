package model

import "time"

// MaxStoredMoves caps the move snapshot persisted with a history record.
// Longer games are stored truncated; this is preserved wire/storage
// behavior, not a defect.
const MaxStoredMoves = 12

// GameHistoryRecord is the immutable persisted outcome of a terminated
// session. Created exactly once per termination and owned by the
// persistence layer afterwards.
type GameHistoryRecord struct {
	SessionID    SessionID `json:"session_id"`
	Player1      string    `json:"player1"`
	Player2      string    `json:"player2"`
	Player1Score int       `json:"player1_score"`
	Player2Score int       `json:"player2_score"`
	Winner       string    `json:"winner"`
	FinalWord    string    `json:"final_word"`
	EndReason    string    `json:"end_reason"`
	Moves        []Move    `json:"moves"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}
