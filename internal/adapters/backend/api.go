package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/ports"
)

const (
	screenshotField    = "screenshot"
	screenshotFileName = "screenshot.png"
	timestampLayout    = "2006-01-02T15:04:05.000Z07:00"
)

// API maps the backend REST routes onto typed calls over a Client.
type API struct {
	client *Client
}

var (
	_ ports.AuthAPI          = (*API)(nil)
	_ ports.ProfileAPI       = (*API)(nil)
	_ ports.WorkEventsAPI    = (*API)(nil)
	_ ports.HeartbeatSender  = (*API)(nil)
	_ ports.ActivityUploader = (*API)(nil)
)

func NewAPI(client *Client) *API {
	return &API{client: client}
}

func (a *API) Login(ctx context.Context, email, password string) (ports.LoginResult, error) {
	var result ports.LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := a.client.Post(ctx, "/auth/login", body, &result); err != nil {
		return ports.LoginResult{}, fmt.Errorf("login: %w", err)
	}
	return result, nil
}

func (a *API) Me(ctx context.Context) (domain.User, error) {
	var user domain.User
	if err := a.client.Get(ctx, "/auth/me", &user); err != nil {
		return domain.User{}, fmt.Errorf("get current user: %w", err)
	}
	return user, nil
}

func (a *API) MyTeam(ctx context.Context) (domain.Team, error) {
	var team domain.Team
	if err := a.client.Get(ctx, "/teams/my", &team); err != nil {
		return domain.Team{}, fmt.Errorf("get team: %w", err)
	}
	return team, nil
}

func (a *API) GetProfile(ctx context.Context) (domain.User, error) {
	var user domain.User
	if err := a.client.Get(ctx, "/users/me", &user); err != nil {
		return domain.User{}, fmt.Errorf("get profile: %w", err)
	}
	return user, nil
}

func (a *API) UpdateProfile(ctx context.Context, name string) (domain.User, error) {
	var user domain.User
	if err := a.client.Patch(ctx, "/users/me", map[string]string{"name": name}, &user); err != nil {
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (a *API) SendHeartbeat(ctx context.Context, active bool) error {
	body := map[string]bool{"workSessionActive": active}
	if err := a.client.Post(ctx, "/users/me/heartbeat", body, nil); err != nil {
		return fmt.Errorf("send heartbeat: %w", err)
	}
	return nil
}

func (a *API) CreateWorkEvent(ctx context.Context, eventType domain.WorkEventType) (domain.WorkEvent, error) {
	var event domain.WorkEvent
	body := map[string]string{"eventType": string(eventType)}
	if err := a.client.Post(ctx, "/work-events", body, &event); err != nil {
		return domain.WorkEvent{}, fmt.Errorf("create %s work event: %w", eventType, err)
	}
	return event, nil
}

func (a *API) ListWorkEvents(ctx context.Context, query domain.WorkEventQuery) (domain.WorkEventPage, error) {
	var page domain.WorkEventPage
	path := "/work-events/my" + encodeQuery([][2]string{
		{"page", formatPositive(query.Page)},
		{"limit", formatPositive(query.Limit)},
		{"eventType", string(query.EventType)},
		{"dateFrom", query.DateFrom},
		{"dateTo", query.DateTo},
		{"sort", query.Sort},
		{"order", query.Order},
	})
	if err := a.client.Get(ctx, path, &page); err != nil {
		return domain.WorkEventPage{}, fmt.Errorf("list work events: %w", err)
	}
	return page, nil
}

func (a *API) WorkSummary(ctx context.Context, query domain.SummaryQuery) (domain.WorkSummary, error) {
	var summary domain.WorkSummary
	path := "/work-events/my/summary" + encodeQuery([][2]string{
		{"dateFrom", query.DateFrom},
		{"dateTo", query.DateTo},
	})
	if err := a.client.Get(ctx, path, &summary); err != nil {
		return domain.WorkSummary{}, fmt.Errorf("get work summary: %w", err)
	}
	return summary, nil
}

func (a *API) UploadActivityLog(ctx context.Context, log domain.ActivityLog) error {
	form := &Multipart{
		FileField: screenshotField,
		FileName:  screenshotFileName,
		File:      log.Screenshot,
		Fields: []FormField{
			{Name: "appName", Value: log.AppName},
			{Name: "windowTitle", Value: log.WindowTitle},
			{Name: "domain", Value: log.Domain},
			{Name: "timestamp", Value: FormatTimestamp(log.Timestamp)},
		},
	}

	if err := a.client.Post(ctx, "/activity-logs", form, nil); err != nil {
		return fmt.Errorf("upload activity log: %w", err)
	}
	return nil
}

// encodeQuery keeps parameter order stable and omits empty values.
func encodeQuery(params [][2]string) string {
	encoded := ""
	for _, param := range params {
		if param[1] == "" {
			continue
		}
		if encoded == "" {
			encoded = "?"
		} else {
			encoded += "&"
		}
		encoded += url.QueryEscape(param[0]) + "=" + url.QueryEscape(param[1])
	}
	return encoded
}

func formatPositive(value int) string {
	if value <= 0 {
		return ""
	}
	return strconv.Itoa(value)
}

// FormatTimestamp renders t the way the activity-log endpoint expects.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
