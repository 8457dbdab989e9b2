package ports

import (
	"context"

	"github.com/bnema/teamfocus-cli/internal/domain"
)

type LoginResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
	Me(ctx context.Context) (domain.User, error)
	MyTeam(ctx context.Context) (domain.Team, error)
}

type ProfileAPI interface {
	GetProfile(ctx context.Context) (domain.User, error)
	UpdateProfile(ctx context.Context, name string) (domain.User, error)
}

type WorkEventsAPI interface {
	CreateWorkEvent(ctx context.Context, eventType domain.WorkEventType) (domain.WorkEvent, error)
	ListWorkEvents(ctx context.Context, query domain.WorkEventQuery) (domain.WorkEventPage, error)
	WorkSummary(ctx context.Context, query domain.SummaryQuery) (domain.WorkSummary, error)
}

type HeartbeatSender interface {
	SendHeartbeat(ctx context.Context, active bool) error
}

type ActivityUploader interface {
	UploadActivityLog(ctx context.Context, log domain.ActivityLog) error
}

// CredentialProvider holds the bearer token. Token returns "" when none is stored.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}
