package forum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

// ErrMissingID is returned when a call that addresses a resource gets an empty id.
var ErrMissingID = errors.New("forum: missing resource id")

const defaultPageSize = 20

// Requester sends one JSON request. path is relative to the API base path; out, when non-nil,
// receives the decoded 2xx body.
type Requester interface {
	Do(ctx context.Context, method, path string, query url.Values, body, out any) error
}

type options struct {
	logger      *zap.Logger
	onMalformed func(op string)
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMalformedHook registers fn to be called each time a list response is replaced by its
// default because the body had the wrong shape.
func WithMalformedHook(fn func(op string)) Option {
	return func(o *options) { o.onMalformed = fn }
}

// Client groups the forum services around a single [Requester].
type Client struct {
	Auth       *AuthService
	Categories *CategoryService
	Threads    *ThreadService
	Moderation *ModerationService
}

func NewClient(r Requester, opts ...Option) *Client {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	b := base{r: r, logger: o.logger, onMalformed: o.onMalformed}

	return &Client{
		Auth:       &AuthService{base: b},
		Categories: &CategoryService{base: b},
		Threads:    &ThreadService{base: b},
		Moderation: &ModerationService{base: b},
	}
}

type base struct {
	r           Requester
	logger      *zap.Logger
	onMalformed func(op string)
}

func (b base) malformed(op string, raw json.RawMessage) {
	if b.onMalformed != nil {
		b.onMalformed(op)
	}
	b.logger.Warn("unexpected response shape, using empty default",
		zap.String("op", op),
		zap.ByteString("body", truncate(raw, 256)),
	)
}

func (b base) swallowed(op string, err error) {
	b.logger.Warn("read failed, using empty default", zap.String("op", op), zap.Error(err))
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// hasArrayField reports whether raw is a JSON object whose field is an array.
func hasArrayField(raw json.RawMessage, field string) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return false
	}
	v, ok := obj[field]
	return ok && isArray(v)
}

func pathID(id string) (string, error) {
	if id == "" {
		return "", ErrMissingID
	}
	return url.PathEscape(id), nil
}

func setPositive(q url.Values, key string, v int) {
	if v > 0 {
		q.Set(key, strconv.Itoa(v))
	}
}

func setNonEmpty(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}

func pageSizeOr(requested int) int {
	if requested > 0 {
		return requested
	}
	return defaultPageSize
}
