package forum

import (
	"context"
	"errors"
	"net/http"

	"github.com/MrEthical07/goSession/session"
)

type AuthService struct {
	base
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (session.AuthResult, error) {
	return s.authenticate(ctx, "/auth/login", req)
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (session.AuthResult, error) {
	return s.authenticate(ctx, "/auth/register", req)
}

func (s *AuthService) authenticate(ctx context.Context, path string, body any) (session.AuthResult, error) {
	var out session.AuthResult
	if err := s.r.Do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return session.AuthResult{}, err
	}
	if out.AccessToken == "" || out.User == nil {
		return session.AuthResult{}, errors.New("forum: auth response without token or user")
	}
	return out, nil
}
