package domain

import (
	"fmt"
	"time"
)

type WorkEventType string

const (
	WorkEventStart  WorkEventType = "start"
	WorkEventPause  WorkEventType = "pause"
	WorkEventResume WorkEventType = "resume"
	WorkEventStop   WorkEventType = "stop"
)

func ParseWorkEventType(raw string) (WorkEventType, error) {
	switch WorkEventType(raw) {
	case WorkEventStart, WorkEventPause, WorkEventResume, WorkEventStop:
		return WorkEventType(raw), nil
	default:
		return "", fmt.Errorf("unknown work event type %q", raw)
	}
}

// NextWorkStatus returns the status reached by applying event to current.
func NextWorkStatus(current WorkStatus, event WorkEventType) (WorkStatus, error) {
	switch event {
	case WorkEventStart:
		if current == WorkStatusIdle {
			return WorkStatusWorking, nil
		}
	case WorkEventPause:
		if current == WorkStatusWorking {
			return WorkStatusPaused, nil
		}
	case WorkEventResume:
		if current == WorkStatusPaused {
			return WorkStatusWorking, nil
		}
	case WorkEventStop:
		if current == WorkStatusWorking || current == WorkStatusPaused {
			return WorkStatusIdle, nil
		}
	default:
		return current, fmt.Errorf("unknown work event type %q", event)
	}

	return current, fmt.Errorf("%s while %s: %w", event, current, ErrInvalidTransition)
}

type WorkEvent struct {
	ID        string        `json:"id"`
	EventType WorkEventType `json:"eventType"`
	Timestamp time.Time     `json:"timestamp"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type WorkEventPage struct {
	WorkEvents []WorkEvent `json:"workEvents"`
	Pagination Pagination  `json:"pagination"`
}

type WorkEventQuery struct {
	Page      int
	Limit     int
	EventType WorkEventType
	DateFrom  string
	DateTo    string
	Sort      string
	Order     string
}

type DaySummary struct {
	Date              string `json:"date"`
	TotalWorkMinutes  int    `json:"totalWorkMinutes"`
	TotalPauseMinutes int    `json:"totalPauseMinutes"`
	SessionCount      int    `json:"sessionCount"`
}

type WorkSummary struct {
	Summary []DaySummary `json:"summary"`
}

type SummaryQuery struct {
	DateFrom string
	DateTo   string
}

// DateKey formats t as the YYYY-MM-DD form the summary endpoints expect.
func DateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
