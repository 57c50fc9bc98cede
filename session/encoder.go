package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	profileFormatVersionCurrent = 1

	// legacy browser records are bare JSON objects
	profileFormatLegacyJSON = '{'

	maxProfileSize = 16 << 10
)

// ErrCorruptRecord is returned when a persisted entry cannot be decoded. Callers treat it as
// absence.
var ErrCorruptRecord = errors.New("corrupt session record")

// EncodeUser serializes a profile in the current storage format.
func EncodeUser(u *UserProfile) ([]byte, error) {
	if u == nil {
		return nil, errors.New("nil user profile")
	}

	payload, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	if len(payload) > maxProfileSize {
		return nil, errors.New("user profile too large")
	}

	var buf bytes.Buffer
	buf.Grow(len(payload) + 1)
	buf.WriteByte(profileFormatVersionCurrent)
	buf.Write(payload)

	return buf.Bytes(), nil
}

// DecodeUser parses a stored profile. It accepts the current versioned format and legacy bare
// JSON objects.
func DecodeUser(data []byte) (*UserProfile, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty profile", ErrCorruptRecord)
	}
	if len(data) > maxProfileSize+1 {
		return nil, fmt.Errorf("%w: profile too large", ErrCorruptRecord)
	}

	var payload []byte
	switch data[0] {
	case profileFormatVersionCurrent:
		payload = data[1:]
	case profileFormatLegacyJSON:
		payload = data
	default:
		return nil, fmt.Errorf("%w: unsupported profile format version %d", ErrCorruptRecord, data[0])
	}

	var u UserProfile
	if err := json.Unmarshal(payload, &u); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if u.ID == "" {
		return nil, fmt.Errorf("%w: profile without id", ErrCorruptRecord)
	}

	return &u, nil
}

// isLegacyProfile reports whether data was written by the browser client and should be
// rewritten in the current format.
func isLegacyProfile(data []byte) bool {
	return len(data) > 0 && data[0] == profileFormatLegacyJSON
}
