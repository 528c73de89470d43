package auth

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash %q should use the argon2id format", hash)
	}

	// Same password, different salt, different hash.
	other, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == other {
		t.Error("two hashes of the same password should differ")
	}
}

func TestVerifyPassword(t *testing.T) {
	password := "correct horse battery staple"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !VerifyPassword(password, hash) {
		t.Error("correct password should verify")
	}
	if VerifyPassword("wrong password entirely", hash) {
		t.Error("wrong password should not verify")
	}
	if VerifyPassword(password, "not-a-valid-hash") {
		t.Error("malformed hash should not verify")
	}
	if VerifyPassword(password, "$argon2id$v=19$m=65536,t=1,p=4$bad$bad") {
		t.Error("corrupted hash should not verify")
	}
}
