package forumtest

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := hashPassword("admin")
	if err != nil {
		t.Fatalf("hashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}
	if !verifyPassword("admin", hash) {
		t.Fatal("expected password verification to succeed")
	}
	if verifyPassword("Admin", hash) {
		t.Fatal("expected wrong password to fail")
	}
}

func TestHashPasswordUsesFreshSalt(t *testing.T) {
	a, err := hashPassword("same-password")
	if err != nil {
		t.Fatalf("hashPassword error: %v", err)
	}
	b, err := hashPassword("same-password")
	if err != nil {
		t.Fatalf("hashPassword error: %v", err)
	}
	if a == b {
		t.Fatal("expected different encodings for the same password")
	}
}

func TestVerifyPasswordRejectsMalformedHashes(t *testing.T) {
	good, err := hashPassword("secret")
	if err != nil {
		t.Fatalf("hashPassword error: %v", err)
	}
	parts := strings.Split(good, "$")

	cases := map[string]string{
		"empty":          "",
		"not phc":        "plain-text",
		"wrong alg":      "$argon2i$" + strings.Join(parts[2:], "$"),
		"wrong version":  "$argon2id$v=16$" + strings.Join(parts[3:], "$"),
		"zero memory":    "$argon2id$v=19$m=0,t=1,p=1$" + parts[4] + "$" + parts[5],
		"unknown param":  "$argon2id$v=19$m=1024,t=1,x=1$" + parts[4] + "$" + parts[5],
		"bad salt":       "$argon2id$v=19$m=1024,t=1,p=1$!!!$" + parts[5],
		"missing hash":   "$argon2id$v=19$m=1024,t=1,p=1$" + parts[4] + "$",
		"huge parallism": "$argon2id$v=19$m=1024,t=1,p=300$" + parts[4] + "$" + parts[5],
	}
	for name, encoded := range cases {
		if verifyPassword("secret", encoded) {
			t.Fatalf("%s: expected verification to fail", name)
		}
	}
}
