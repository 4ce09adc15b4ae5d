package model

import "time"

// TimeSession is one stretch of work on a subtask. A session without EndedAt is
// the subtask's active session.
type TimeSession struct {
	ID              string     `json:"id"`
	SubtaskID       string     `json:"subtask_id"`
	StartedAt       time.Time  `json:"started_at"`
	PausedAt        *time.Time `json:"paused_at,omitempty"`
	ResumedAt       *time.Time `json:"resumed_at,omitempty"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationSeconds int64      `json:"duration_seconds"`
}

func (s TimeSession) Active() bool {
	return s.EndedAt == nil
}
