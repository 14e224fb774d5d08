// Package domain contains the identity context: users and their planning
// settings. Authentication and token issuance live outside Daybreak; this
// context only stores the token used to resolve the requesting user.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/daybreakhq/daybreak/internal/shared/domain"
)

var (
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidEmail is returned when an email address is empty or malformed.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidName is returned when a user name is empty.
	ErrInvalidName = errors.New("user name cannot be empty")
)

// Profile classifies how a user spends their days. It feeds the feature
// encoder and the profile×category affinity in explanations.
type Profile string

const (
	ProfileStudent      Profile = "student"
	ProfileWorker       Profile = "worker"
	ProfileEntrepreneur Profile = "entrepreneur"
)

// IsValid reports whether the profile is one of the known values.
func (p Profile) IsValid() bool {
	switch p {
	case ProfileStudent, ProfileWorker, ProfileEntrepreneur:
		return true
	}
	return false
}

// User is the aggregate root of the identity context.
type User struct {
	sharedDomain.BaseEntity
	email    string
	name     string
	profile  Profile
	timezone string
	apiToken string
}

// NewUser creates a user with a fresh identity.
func NewUser(email, name string, profile Profile, timezone string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if !profile.IsValid() {
		profile = ProfileWorker
	}
	if timezone == "" {
		timezone = "UTC"
	}

	return &User{
		BaseEntity: sharedDomain.NewBaseEntity(),
		email:      email,
		name:       name,
		profile:    profile,
		timezone:   timezone,
	}, nil
}

// RehydrateUser reconstructs a user from persistence without validation.
func RehydrateUser(
	id uuid.UUID,
	email, name string,
	profile Profile,
	timezone, apiToken string,
	createdAt, updatedAt time.Time,
) *User {
	return &User{
		BaseEntity: sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		email:      email,
		name:       name,
		profile:    profile,
		timezone:   timezone,
		apiToken:   apiToken,
	}
}

func (u *User) Email() string    { return u.email }
func (u *User) Name() string     { return u.name }
func (u *User) Profile() Profile { return u.profile }
func (u *User) Timezone() string { return u.timezone }
func (u *User) APIToken() string { return u.apiToken }

// SetAPIToken stores the opaque token issued by the auth collaborator.
func (u *User) SetAPIToken(token string) {
	u.apiToken = token
	u.Touch()
}

// ChangeProfile updates the user's planning profile.
func (u *User) ChangeProfile(profile Profile) error {
	if !profile.IsValid() {
		return errors.New("unknown profile: " + string(profile))
	}
	u.profile = profile
	u.Touch()
	return nil
}
