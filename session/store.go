package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable is returned when the backing medium cannot be reached.
var ErrStoreUnavailable = errors.New("session store unavailable")

// Store is the persistent session contract. Each entry is addressed independently. Getters
// return "" or nil for a missing entry; setters delete the entry when given "" or nil.
type Store interface {
	AccessToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, token string) error
	RefreshToken(ctx context.Context) (string, error)
	SetRefreshToken(ctx context.Context, token string) error
	User(ctx context.Context) (*UserProfile, error)
	SetUser(ctx context.Context, u *UserProfile) error
}

// RecordWriter is implemented by stores that can write all three entries in one round-trip.
type RecordWriter interface {
	WriteRecord(ctx context.Context, rec Record) error
}

// Load reads all three entries. Unavailable or corrupt entries read as absent; the first such
// error is returned alongside the best-effort record so callers can log it.
func Load(ctx context.Context, s Store) (Record, error) {
	var (
		rec      Record
		firstErr error
	)
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	access, err := s.AccessToken(ctx)
	keep(err)
	if err == nil {
		rec.AccessToken = access
	}

	refresh, err := s.RefreshToken(ctx)
	keep(err)
	if err == nil {
		rec.RefreshToken = refresh
	}

	user, err := s.User(ctx)
	keep(err)
	if err == nil {
		rec.User = user
	}

	return rec, firstErr
}

// Save writes the three entries in order: access token, refresh token, profile.
func Save(ctx context.Context, s Store, rec Record) error {
	if w, ok := s.(RecordWriter); ok {
		return w.WriteRecord(ctx, rec)
	}
	if err := s.SetAccessToken(ctx, rec.AccessToken); err != nil {
		return err
	}
	if err := s.SetRefreshToken(ctx, rec.RefreshToken); err != nil {
		return err
	}
	return s.SetUser(ctx, rec.User)
}

// Wipe deletes all three entries. Every entry is attempted even if an earlier one fails.
func Wipe(ctx context.Context, s Store) error {
	if w, ok := s.(RecordWriter); ok {
		return w.WriteRecord(ctx, Record{})
	}
	return errors.Join(
		s.SetAccessToken(ctx, ""),
		s.SetRefreshToken(ctx, ""),
		s.SetUser(ctx, nil),
	)
}

// RedisStore keeps the three session entries under a per-client namespace.
//
//	Keys: <prefix>:{<namespace>}:access, :refresh, :user
//
// The braces keep a namespace in one cluster hash slot so WriteRecord can use MULTI.
type RedisStore struct {
	redis     redis.UniversalClient
	prefix    string
	namespace string
	ttl       time.Duration
}

// NewRedisStore creates a [RedisStore]. namespace identifies one client installation; ttl of 0
// keeps entries until deleted.
func NewRedisStore(client redis.UniversalClient, prefix, namespace string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		redis:     client,
		prefix:    prefix,
		namespace: normalizeNamespace(namespace),
		ttl:       ttl,
	}
}

func normalizeNamespace(namespace string) string {
	if namespace == "" {
		return "default"
	}
	return namespace
}

func (s *RedisStore) key(entry string) string {
	return s.prefix + ":{" + s.namespace + "}:" + entry
}

func (s *RedisStore) getString(ctx context.Context, entry string) (string, error) {
	v, err := s.redis.Get(ctx, s.key(entry)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return v, nil
}

func (s *RedisStore) setString(ctx context.Context, entry, value string) error {
	var err error
	if value == "" {
		err = s.redis.Del(ctx, s.key(entry)).Err()
	} else {
		err = s.redis.Set(ctx, s.key(entry), value, s.ttl).Err()
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) AccessToken(ctx context.Context) (string, error) {
	return s.getString(ctx, "access")
}

func (s *RedisStore) SetAccessToken(ctx context.Context, token string) error {
	return s.setString(ctx, "access", token)
}

func (s *RedisStore) RefreshToken(ctx context.Context) (string, error) {
	return s.getString(ctx, "refresh")
}

func (s *RedisStore) SetRefreshToken(ctx context.Context, token string) error {
	return s.setString(ctx, "refresh", token)
}

// User reads the stored profile. Legacy JSON profiles are migrated in place.
func (s *RedisStore) User(ctx context.Context) (*UserProfile, error) {
	data, err := s.redis.Get(ctx, s.key("user")).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	u, err := DecodeUser(data)
	if err != nil {
		return nil, err
	}
	if isLegacyProfile(data) {
		if err := s.SetUser(ctx, u); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (s *RedisStore) SetUser(ctx context.Context, u *UserProfile) error {
	if u == nil {
		if err := s.redis.Del(ctx, s.key("user")).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil
	}

	data, err := EncodeUser(u)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key("user"), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// WriteRecord writes or deletes all three entries in a single MULTI/EXEC.
//
//	Performance: 1 round-trip (3 commands).
func (s *RedisStore) WriteRecord(ctx context.Context, rec Record) error {
	var userData []byte
	if rec.User != nil {
		data, err := EncodeUser(rec.User)
		if err != nil {
			return err
		}
		userData = data
	}

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if rec.AccessToken == "" {
			pipe.Del(ctx, s.key("access"))
		} else {
			pipe.Set(ctx, s.key("access"), rec.AccessToken, s.ttl)
		}
		if rec.RefreshToken == "" {
			pipe.Del(ctx, s.key("refresh"))
		} else {
			pipe.Set(ctx, s.key("refresh"), rec.RefreshToken, s.ttl)
		}
		if userData == nil {
			pipe.Del(ctx, s.key("user"))
		} else {
			pipe.Set(ctx, s.key("user"), userData, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return time.Since(start), nil
}
