package forumtest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// User is a seeded or registered account.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	passwordHash string
}

type override struct {
	status int
	body   any
}

// Server is an in-memory forum backend.
type Server struct {
	tokens *TokenIssuer
	engine *gin.Engine
	http   *httptest.Server

	mu         sync.Mutex
	users      map[string]*User // by username
	revoked    map[string]bool
	categories []category
	threads    []thread
	replies    []reply
	reports    []report
	actions    []action
	overrides  map[string]override
	hits       map[string]int
}

// Option customizes a [Server].
type Option func(*serverOptions)

type serverOptions struct {
	token TokenConfig
}

// WithTokenConfig replaces the default HS256 token configuration.
func WithTokenConfig(cfg TokenConfig) Option {
	return func(o *serverOptions) { o.token = cfg }
}

// Seeded accounts. Passwords equal the username.
const (
	AdminUsername     = "admin"
	ModeratorUsername = "moderator"
	MemberUsername    = "member"
)

// NewServer builds the fake backend and starts it on a loopback listener.
func NewServer(opts ...Option) (*Server, error) {
	o := serverOptions{
		token: TokenConfig{
			AccessTTL:     15 * time.Minute,
			SigningMethod: MethodHS256,
			Secret:        []byte("forumtest-secret-forumtest-secret"),
			Issuer:        "forumtest",
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	tokens, err := NewTokenIssuer(o.token)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.TestMode)
	s := &Server{
		tokens:    tokens,
		engine:    gin.New(),
		users:     make(map[string]*User),
		revoked:   make(map[string]bool),
		overrides: make(map[string]override),
		hits:      make(map[string]int),
	}
	if err := s.seed(); err != nil {
		return nil, err
	}
	s.engine.Use(gin.Recovery(), requestID(), s.count(), s.applyOverrides())
	s.registerRoutes()

	s.http = httptest.NewServer(s.engine)
	return s, nil
}

// URL is the server root. The API lives under URL()+"/api/v1".
func (s *Server) URL() string { return s.http.URL }

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) Close() { s.http.Close() }

// RevokeToken makes every later request carrying token fail with 401.
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = true
}

func (s *Server) isRevoked(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[token]
}

// Override answers every request for method and path (the full route, e.g. "/api/v1/threads")
// with status and body until cleared with [Server.ClearOverrides].
func (s *Server) Override(method, path string, status int, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method+" "+path] = override{status: status, body: body}
}

func (s *Server) ClearOverrides() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides = make(map[string]override)
}

// Hits returns how many requests reached method and path.
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// IssueToken signs a token for a seeded or registered user.
func (s *Server) IssueToken(username string) (string, *User, error) {
	s.mu.Lock()
	u, ok := s.users[username]
	s.mu.Unlock()
	if !ok {
		return "", nil, errUnknownUser
	}
	tok, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return "", nil, err
	}
	cp := *u
	return tok, &cp, nil
}

func (s *Server) count() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.hits[c.Request.Method+" "+c.Request.URL.Path]++
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) applyOverrides() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		ov, ok := s.overrides[c.Request.Method+" "+c.Request.URL.Path]
		s.mu.Unlock()
		if !ok {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(ov.status, ov.body)
	}
}

func (s *Server) seed() error {
	now := time.Now().UTC()
	for _, name := range []struct{ username, role string }{
		{AdminUsername, "admin"},
		{ModeratorUsername, "moderator"},
		{MemberUsername, "user"},
	} {
		hash, err := hashPassword(name.username)
		if err != nil {
			return err
		}
		s.users[name.username] = &User{
			ID:           uuid.NewString(),
			Username:     name.username,
			Email:        name.username + "@forum.test",
			Role:         name.role,
			Status:       "active",
			CreatedAt:    now,
			passwordHash: hash,
		}
	}

	s.categories = append(s.categories,
		category{ID: uuid.NewString(), Name: "General", Slug: "general", Description: "Anything goes", CreatedAt: now, UpdatedAt: now},
		category{ID: uuid.NewString(), Name: "Staff", Slug: "staff", IsPrivate: true, CreatedAt: now, UpdatedAt: now},
	)
	return nil
}
