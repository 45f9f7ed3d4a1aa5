package security_test

import (
	"errors"
	"testing"

	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/security"
)

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    32768,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("very-secure-password", testPasswordConfig)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty string")
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestHashPasswordSaltsEachHash(t *testing.T) {
	a, err := security.HashPassword("pw", testPasswordConfig)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := security.HashPassword("pw", testPasswordConfig)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct hashes for the same password")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := security.HashPassword("", testPasswordConfig); err == nil {
		t.Fatal("expected empty password to be rejected")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if _, err := security.VerifyPassword("pw", "not-a-hash"); !errors.Is(err, security.ErrInvalidHash) {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
}

func TestArgon2HasherSatisfiesHasher(t *testing.T) {
	var hasher security.Hasher = security.NewArgon2Hasher(testPasswordConfig)
	hash, err := hasher.Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	ok, err := hasher.Verify("secret", hash)
	if err != nil || !ok {
		t.Fatalf("expected verify ok, got %v (%v)", ok, err)
	}
}
