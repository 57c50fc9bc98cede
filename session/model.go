package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// Role is the forum role carried on a user profile.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// Valid reports whether r is one of the roles issued by the backend.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// UserID is a user identifier. The backend issues UUID strings, but profiles persisted by
// older clients may carry numeric IDs, so both JSON forms are accepted.
type UserID string

func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("user id must be a string or number")
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return errors.New("user id must be a string or number")
	}
	*id = UserID(n.String())
	return nil
}

// UserProfile is the authenticated user as returned by the auth endpoints. Role is the only
// field session consumers route on; the rest is display data.
type UserProfile struct {
	ID        UserID    `json:"id"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Clone returns a copy of u that does not alias it.
func (u *UserProfile) Clone() *UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// AuthResult is the body returned by the login and register endpoints. TokenType and
// ExpiresIn are stored for callers but never enforced.
type AuthResult struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *UserProfile `json:"user"`
	TokenType    string       `json:"token_type,omitempty"`
	ExpiresIn    int64        `json:"expires_in,omitempty"`
}

// Record is the persisted mirror of a session: three independent entries.
type Record struct {
	AccessToken  string
	RefreshToken string
	User         *UserProfile
}

// Complete reports whether the record holds both an access token and a profile. Anything
// less is treated as "no session" by hydration.
func (r Record) Complete() bool {
	return r.AccessToken != "" && r.User != nil
}

// Empty reports whether no entry is present.
func (r Record) Empty() bool {
	return r.AccessToken == "" && r.RefreshToken == "" && r.User == nil
}

// AuthResult resynthesizes the auth result a complete record was written from.
func (r Record) AuthResult() AuthResult {
	return AuthResult{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		User:         r.User.Clone(),
	}
}
