package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/notify"
	"github.com/bnema/teamfocus-cli/internal/ports"
	"github.com/bnema/teamfocus-cli/internal/ports/mocks"
	"github.com/bnema/teamfocus-cli/internal/testutil"
)

type authFixture struct {
	api         *mocks.MockAuthAPI
	credentials *mocks.MockCredentialProvider
	preferences *mocks.MockPreferencesRepository
	tokens      *mocks.MockTokenInspector
	clock       *testutil.FakeClock
	session     *SessionStore
	bus         *notify.Bus
	service     *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	clock := testutil.NewFakeClock(testEpoch)
	f := &authFixture{
		api:         mocks.NewMockAuthAPI(t),
		credentials: mocks.NewMockCredentialProvider(t),
		preferences: mocks.NewMockPreferencesRepository(t),
		tokens:      mocks.NewMockTokenInspector(t),
		clock:       clock,
		session:     NewSessionStore(clock, discardLogger()),
		bus:         notify.NewBus(),
	}
	f.service = NewAuthService(AuthServiceConfig{
		API:         f.api,
		Credentials: f.credentials,
		Session:     f.session,
		Preferences: f.preferences,
		Tokens:      f.tokens,
		Clock:       clock,
		Notices:     f.bus,
		Logger:      discardLogger(),
	})
	return f
}

func member() domain.User {
	return domain.User{ID: "u1", Email: "ada@example.com", Name: "Ada", Role: domain.MemberRole}
}

func TestAuthLoginStoresTokenAndLoadsTeam(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.api.EXPECT().Login(mock.Anything, "ada@example.com", "secret").
		Return(ports.LoginResult{User: member(), Token: "tok-1"}, nil).Once()
	f.credentials.EXPECT().SetToken(mock.Anything, "tok-1").Return(nil).Once()
	f.api.EXPECT().MyTeam(mock.Anything).Return(domain.Team{ID: "t1", Name: "Core"}, nil).Once()
	f.preferences.EXPECT().Load(mock.Anything).Return(domain.Preferences{}, nil).Once()
	f.preferences.EXPECT().Save(mock.Anything, domain.Preferences{LastEmail: "ada@example.com"}).Return(nil).Once()

	snapshot, err := f.service.Login(context.Background(), "  ada@example.com ", "secret")

	require.NoError(t, err)
	require.NotNil(t, snapshot.User)
	assert.Equal(t, "u1", snapshot.User.ID)
	require.NotNil(t, snapshot.Team)
	assert.Equal(t, "Core", snapshot.Team.Name)
	assert.Equal(t, domain.WorkStatusIdle, snapshot.WorkStatus)
}

func TestAuthLoginRejectsManagers(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	manager := member()
	manager.Role = "manager"
	f.api.EXPECT().Login(mock.Anything, "ada@example.com", "secret").
		Return(ports.LoginResult{User: manager, Token: "tok-1"}, nil).Once()
	f.credentials.EXPECT().SetToken(mock.Anything, "tok-1").Return(nil).Once()
	f.credentials.EXPECT().ClearToken(mock.Anything).Return(nil).Once()

	_, err := f.service.Login(context.Background(), "ada@example.com", "secret")

	require.ErrorIs(t, err, domain.ErrRoleNotAllowed)
	assert.Contains(t, err.Error(), RoleNotAllowedMessage)
	assert.Nil(t, f.session.User())
}

func TestAuthLoginLogsOutWhenTrialEnded(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	ended := testEpoch.Add(-time.Hour)
	f.api.EXPECT().Login(mock.Anything, "ada@example.com", "secret").
		Return(ports.LoginResult{User: member(), Token: "tok-1"}, nil).Once()
	f.credentials.EXPECT().SetToken(mock.Anything, "tok-1").Return(nil).Once()
	f.api.EXPECT().MyTeam(mock.Anything).Return(domain.Team{ID: "t1", TrialEndsAt: &ended}, nil).Once()
	f.credentials.EXPECT().ClearToken(mock.Anything).Return(nil).Once()

	_, err := f.service.Login(context.Background(), "ada@example.com", "secret")

	require.ErrorIs(t, err, domain.ErrTrialEnded)
	assert.Equal(t, domain.SessionSnapshot{WorkStatus: domain.WorkStatusIdle}, f.session.Snapshot())
}

func TestAuthLoginRequiresEmailAndPassword(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)

	_, err := f.service.Login(context.Background(), "  ", "secret")
	require.Error(t, err)

	_, err = f.service.Login(context.Background(), "ada@example.com", "")
	require.Error(t, err)
}

func TestAuthLoginSurfacesBackendError(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.api.EXPECT().Login(mock.Anything, "ada@example.com", "wrong").
		Return(ports.LoginResult{}, fmt.Errorf("login: %w", domain.ErrUnauthorized)).Once()

	_, err := f.service.Login(context.Background(), "ada@example.com", "wrong")

	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthRestoreSession(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	expires := testEpoch.Add(time.Hour)
	f.credentials.EXPECT().Token(mock.Anything).Return("tok-1", nil).Once()
	f.tokens.EXPECT().Inspect("tok-1").Return(ports.TokenClaims{Subject: "u1", ExpiresAt: &expires}, nil).Once()
	f.api.EXPECT().Me(mock.Anything).Return(member(), nil).Once()
	f.api.EXPECT().MyTeam(mock.Anything).Return(domain.Team{ID: "t1"}, nil).Once()

	snapshot, err := f.service.RestoreSession(context.Background())

	require.NoError(t, err)
	require.NotNil(t, snapshot.User)
	assert.Equal(t, "ada@example.com", snapshot.User.Email)
}

func TestAuthRestoreSessionWithoutToken(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.credentials.EXPECT().Token(mock.Anything).Return("", nil).Once()

	_, err := f.service.RestoreSession(context.Background())

	require.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestAuthRestoreSessionExpiredTokenLogsOut(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	expired := testEpoch.Add(-time.Minute)
	f.credentials.EXPECT().Token(mock.Anything).Return("tok-1", nil).Once()
	f.tokens.EXPECT().Inspect("tok-1").Return(ports.TokenClaims{ExpiresAt: &expired}, nil).Once()
	f.credentials.EXPECT().ClearToken(mock.Anything).Return(nil).Once()

	_, err := f.service.RestoreSession(context.Background())

	require.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestAuthRestoreSessionOpaqueTokenAndManagerRole(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	manager := member()
	manager.Role = "admin"
	f.credentials.EXPECT().Token(mock.Anything).Return("opaque", nil).Once()
	f.tokens.EXPECT().Inspect("opaque").Return(ports.TokenClaims{}, errors.New("token is malformed")).Once()
	f.api.EXPECT().Me(mock.Anything).Return(manager, nil).Once()
	f.credentials.EXPECT().ClearToken(mock.Anything).Return(nil).Once()

	_, err := f.service.RestoreSession(context.Background())

	require.ErrorIs(t, err, domain.ErrRoleNotAllowed)
	assert.Nil(t, f.session.User())
}

func TestAuthRestoreSessionJoinsLogoutFailure(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.credentials.EXPECT().Token(mock.Anything).Return("tok-1", nil).Once()
	f.tokens.EXPECT().Inspect("tok-1").Return(ports.TokenClaims{}, nil).Once()
	f.api.EXPECT().Me(mock.Anything).Return(domain.User{}, fmt.Errorf("get current user: %w", domain.ErrNetwork)).Once()
	f.credentials.EXPECT().ClearToken(mock.Anything).Return(errors.New("pass locked")).Once()

	_, err := f.service.RestoreSession(context.Background())

	require.ErrorIs(t, err, domain.ErrNetwork)
	assert.Contains(t, err.Error(), "pass locked")
}

func TestAuthHandleUnauthorizedClearsSessionOnce(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	notices, cancel := f.bus.Subscribe()
	defer cancel()

	user := member()
	f.session.SetUser(&user)
	require.NoError(t, f.session.SetWorkStatus(domain.WorkStatusWorking, testEpoch))

	f.service.HandleUnauthorized()
	f.service.HandleUnauthorized()

	assert.Nil(t, f.session.User())
	assert.Equal(t, domain.WorkStatusIdle, f.session.WorkStatus())
	require.Len(t, notices, 1)
	notice := <-notices
	assert.Equal(t, notify.KindSessionExpired, notice.Kind)
	assert.Equal(t, SessionExpiredMessage, notice.Message)
}

func TestAuthRememberedEmail(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.preferences.EXPECT().Load(mock.Anything).Return(domain.Preferences{LastEmail: "ada@example.com"}, nil).Once()

	assert.Equal(t, "ada@example.com", f.service.RememberedEmail(context.Background()))
}
