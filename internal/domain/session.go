package domain

import "time"

const (
	DefaultScreenshotIntervalMinutes = 5
	MinScreenshotIntervalMinutes     = 1

	// MemberRole is the only role allowed to track time from the desktop client.
	MemberRole = "user"
)

type WorkStatus string

const (
	WorkStatusIdle    WorkStatus = "idle"
	WorkStatusWorking WorkStatus = "working"
	WorkStatusPaused  WorkStatus = "paused"
)

func (s WorkStatus) Valid() bool {
	switch s {
	case WorkStatusIdle, WorkStatusWorking, WorkStatusPaused:
		return true
	default:
		return false
	}
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (u User) IsMember() bool {
	return u.Role == MemberRole
}

func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

type Team struct {
	ID                        string     `json:"id"`
	Name                      string     `json:"name"`
	ScreenshotIntervalMinutes *int       `json:"screenshotIntervalMinutes"`
	TrialEndsAt               *time.Time `json:"trialEndsAt"`
}

// ScreenshotInterval returns the capture cadence, defaulting to five minutes
// and never shorter than one.
func (t Team) ScreenshotInterval() time.Duration {
	minutes := DefaultScreenshotIntervalMinutes
	if t.ScreenshotIntervalMinutes != nil {
		minutes = *t.ScreenshotIntervalMinutes
	}
	if minutes < MinScreenshotIntervalMinutes {
		minutes = MinScreenshotIntervalMinutes
	}

	return time.Duration(minutes) * time.Minute
}

func (t Team) TrialActiveAt(now time.Time) bool {
	if t.TrialEndsAt == nil {
		return true
	}
	return t.TrialEndsAt.After(now)
}

// SessionSnapshot is a copy of the session state at one instant.
type SessionSnapshot struct {
	User         *User
	Team         *Team
	WorkStatus   WorkStatus
	LastResumeAt *time.Time
}

// SessionElapsed reports how long the current working stretch has lasted.
func (s SessionSnapshot) SessionElapsed(now time.Time) time.Duration {
	if s.WorkStatus != WorkStatusWorking || s.LastResumeAt == nil {
		return 0
	}

	elapsed := now.Sub(*s.LastResumeAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
