package session

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeUserLegacyNumericID(t *testing.T) {
	u, err := DecodeUser([]byte(`{"id":17,"username":"carol","role":"admin"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if u.ID != "17" || u.Role != RoleAdmin {
		t.Fatalf("unexpected profile: %+v", u)
	}
}

func TestDecodeUserRejects(t *testing.T) {
	cases := map[string][]byte{
		"empty":       nil,
		"bad version": {9, '{', '}'},
		"bad json":    append([]byte{profileFormatVersionCurrent}, []byte("{oops")...),
		"no id":       append([]byte{profileFormatVersionCurrent}, []byte(`{"role":"user"}`)...),
		"bool id":     []byte(`{"id":true}`),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeUser(data); !errors.Is(err, ErrCorruptRecord) {
				t.Fatalf("expected ErrCorruptRecord, got %v", err)
			}
		})
	}
}

func TestEncodeUserNil(t *testing.T) {
	if _, err := EncodeUser(nil); err == nil {
		t.Fatal("expected error for nil profile")
	}
}

func TestAuthResultDecodesBackendBody(t *testing.T) {
	body := `{"access_token":"a","refresh_token":"r","token_type":"Bearer","expires_in":900,
		"user":{"id":"u-1","username":"dave","email":"d@example.com","role":"moderator","status":"active"}}`

	var res AuthResult
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.User == nil || res.User.Role != RoleModerator || res.ExpiresIn != 900 {
		t.Fatalf("unexpected auth result: %+v", res)
	}
}

func TestRecordAuthResultDoesNotAlias(t *testing.T) {
	rec := Record{AccessToken: "a", User: &UserProfile{ID: "1", Role: RoleUser}}
	res := rec.AuthResult()
	res.User.Role = RoleAdmin
	if rec.User.Role != RoleUser {
		t.Fatal("AuthResult aliased the stored profile")
	}
}

func FuzzDecodeUser(f *testing.F) {
	if enc, err := EncodeUser(&UserProfile{ID: "u", Role: RoleUser}); err == nil {
		f.Add(enc)
	}
	f.Add([]byte{})
	f.Add([]byte{profileFormatVersionCurrent})
	f.Add([]byte(`{"id":1}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		u, err := DecodeUser(data)
		if err == nil && u == nil {
			t.Fatal("nil profile without error")
		}
	})
}
