package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc"

	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/ports"
)

var ErrNameRequired = errors.New("name is required")

type Profile struct {
	User domain.User  `json:"user"`
	Team *domain.Team `json:"team"`
}

type ProfileService struct {
	profiles ports.ProfileAPI
	teams    ports.AuthAPI
	session  *SessionStore
}

func NewProfileService(profiles ports.ProfileAPI, teams ports.AuthAPI, session *SessionStore) *ProfileService {
	return &ProfileService{profiles: profiles, teams: teams, session: session}
}

// Show fetches the profile and team together and refreshes the session
// with whatever came back. A failed team lookup still returns the user.
func (s *ProfileService) Show(ctx context.Context) (Profile, error) {
	var (
		user    domain.User
		userErr error
		team    domain.Team
		teamErr error
	)

	var wg conc.WaitGroup
	wg.Go(func() { user, userErr = s.profiles.GetProfile(ctx) })
	wg.Go(func() { team, teamErr = s.teams.MyTeam(ctx) })
	wg.Wait()

	if userErr != nil {
		return Profile{}, userErr
	}

	s.session.SetUser(&user)
	profile := Profile{User: user}
	if teamErr == nil {
		s.session.SetTeam(&team)
		profile.Team = &team
	}
	return profile, nil
}

func (s *ProfileService) UpdateName(ctx context.Context, name string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, ErrNameRequired
	}

	user, err := s.profiles.UpdateProfile(ctx, name)
	if err != nil {
		return domain.User{}, fmt.Errorf("rename profile: %w", err)
	}

	s.session.SetUser(&user)
	return user, nil
}
