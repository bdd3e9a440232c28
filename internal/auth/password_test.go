package auth_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mdewit/matchbox/internal/auth"
	"github.com/mdewit/matchbox/internal/krypto"
)

func Test_ParsePassword(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		for _, raw := range []string{
			"1",
			"secret123",
			strings.Repeat("a", 512),
			"🥸🥸🥸",
		} {
			_, err := auth.ParsePassword(raw)
			if err != nil {
				t.Errorf("failed to parse password %q: %v", raw, err)
			}
		}
	})

	t.Run("fail", func(t *testing.T) {
		for _, raw := range []string{
			"",
			strings.Repeat("a", 513),
		} {
			_, err := auth.ParsePassword(raw)
			if !errors.Is(err, auth.ErrInvalidPassword) {
				t.Errorf("got %v, want ErrInvalidPassword for %d bytes", err, len(raw))
			}
		}
	})
}

func Test_Password_HashAndMatch(t *testing.T) {
	params := krypto.Argon2Params{
		MemoryKiB:   1024,
		Iterations:  1,
		Parallelism: 1,
	}

	pwd, err := auth.ParsePassword("secret123")
	if err != nil {
		t.Fatalf("failed to parse password: %v", err)
	}

	hash, err := pwd.Hash(params)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if !pwd.Match(hash) {
		t.Errorf("password does not match its own hash")
	}

	other, err := auth.ParsePassword("secret124")
	if err != nil {
		t.Fatalf("failed to parse password: %v", err)
	}

	if other.Match(hash) {
		t.Errorf("different password matches the hash")
	}
}

func Test_Password_DoesNotExposePlaintext(t *testing.T) {
	pwd, err := auth.ParsePassword("secret123")
	if err != nil {
		t.Fatalf("failed to parse password: %v", err)
	}

	for _, out := range []string{
		fmt.Sprintf("%s", pwd),
		fmt.Sprintf("%v", pwd),
		fmt.Sprintf("%+v", pwd),
		fmt.Sprintf("%#v", pwd),
	} {
		if out != krypto.SecretMarker {
			t.Errorf("got %q, want %q", out, krypto.SecretMarker)
		}
	}

	jsonOut, err := json.Marshal(pwd)
	if err != nil {
		t.Fatalf("failed to marshal password: %v", err)
	}
	if string(jsonOut) != fmt.Sprintf("%q", krypto.SecretMarker) {
		t.Errorf("got %s, want %q", jsonOut, krypto.SecretMarker)
	}
}
