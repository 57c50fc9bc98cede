package forumtest

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goSession/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod selects how access tokens are signed.
type SigningMethod string

const (
	MethodHS256   SigningMethod = "hs256"
	MethodEd25519 SigningMethod = "ed25519"
)

// TokenConfig configures the [TokenIssuer].
type TokenConfig struct {
	AccessTTL     time.Duration
	SigningMethod SigningMethod
	// Secret is the HS256 key.
	Secret []byte
	// PrivateKey is the ed25519 signing key; its public half verifies.
	PrivateKey ed25519.PrivateKey
	Issuer     string
	Leeway     time.Duration
}

// Claims mirrors the backend token: subject is the user UUID and role is a custom claim.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies access tokens.
type TokenIssuer struct {
	config TokenConfig
}

func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.Secret) == 0 {
			return nil, errors.New("hs256 requires secret")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) != ed25519.PrivateKeySize {
			return nil, errors.New("ed25519 requires private key")
		}
	default:
		return nil, errors.New("unsupported signing method")
	}
	return &TokenIssuer{config: cfg}, nil
}

// Issue signs an access token for userID with role. Each token carries a unique jti so that
// two tokens issued in the same second differ.
func (i *TokenIssuer) Issue(userID, role string) (string, error) {
	if !session.Role(role).Valid() {
		return "", fmt.Errorf("unknown role %q", role)
	}
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			Issuer:    i.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.config.AccessTTL)),
		},
	}

	key, err := i.signKey()
	if err != nil {
		return "", err
	}
	return jwt.NewWithClaims(i.method(), claims).SignedString(key)
}

// Parse verifies tokenStr and returns its claims. The subject must be a UUID.
func (i *TokenIssuer) Parse(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{i.method().Alg()}),
		jwt.WithExpirationRequired(),
	}
	if i.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(i.config.Leeway))
	}
	if i.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(i.config.Issuer))
	}

	token, err := jwt.NewParser(options...).ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != i.method().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return i.verifyKey()
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("invalid subject claim format: %w", err)
	}
	if claims.Role == "" {
		return nil, errors.New("missing role claim")
	}
	if !session.Role(claims.Role).Valid() {
		return nil, fmt.Errorf("unknown role claim %q", claims.Role)
	}
	return claims, nil
}

func (i *TokenIssuer) method() jwt.SigningMethod {
	if i.config.SigningMethod == MethodEd25519 {
		return jwt.SigningMethodEdDSA
	}
	return jwt.SigningMethodHS256
}

func (i *TokenIssuer) signKey() (interface{}, error) {
	if i.config.SigningMethod == MethodEd25519 {
		return i.config.PrivateKey, nil
	}
	return i.config.Secret, nil
}

func (i *TokenIssuer) verifyKey() (interface{}, error) {
	if i.config.SigningMethod == MethodEd25519 {
		pub, ok := i.config.PrivateKey.Public().(ed25519.PublicKey)
		if !ok {
			return nil, errors.New("invalid ed25519 public key type")
		}
		return pub, nil
	}
	return i.config.Secret, nil
}
