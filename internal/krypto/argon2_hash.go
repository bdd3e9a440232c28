package krypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	variant = "argon2id"
	saltLen = 16
	hashLen = 32
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidHash  = errors.New("invalid argon2 hash")
)

// Argon2Params are the cost parameters for the argon2id function.
type Argon2Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

// DefaultArgon2Params follow the first recommendation of RFC 9106:
// 46 MiB of memory with a single iteration.
var DefaultArgon2Params = Argon2Params{
	MemoryKiB:   47104,
	Iterations:  1,
	Parallelism: 1,
}

// Argon2Hash is the parsed representation of an argon2id hash in the
// standard "$argon2id$v=..$m=..,t=..,p=..$salt$hash" encoding. It keeps
// the parameters used at hashing time, so hashes created with older cost
// settings keep matching after the defaults change.
type Argon2Hash struct {
	Variant     string
	Version     int
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	Salt        []byte
	Hash        []byte
}

// HashArgon2 hashes data with the default cost parameters.
func HashArgon2(data []byte) (Argon2Hash, error) {
	return HashArgon2WithParams(data, DefaultArgon2Params)
}

// HashArgon2WithParams hashes data with the provided cost parameters
// and a random salt.
func HashArgon2WithParams(data []byte, params Argon2Params) (Argon2Hash, error) {
	if len(data) == 0 {
		return Argon2Hash{}, fmt.Errorf("no data to hash: %w", ErrInvalidInput)
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return Argon2Hash{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey(data, salt, params.Iterations, params.MemoryKiB, params.Parallelism, hashLen)

	return Argon2Hash{
		Variant:     variant,
		Version:     argon2.Version,
		MemoryKiB:   params.MemoryKiB,
		Iterations:  params.Iterations,
		Parallelism: params.Parallelism,
		Salt:        salt,
		Hash:        hash,
	}, nil
}

// ParseArgon2Hash parses the standard encoding of an argon2id hash.
func ParseArgon2Hash(raw string) (Argon2Hash, error) {
	parts := strings.Split(raw, "$")
	if len(parts) != 6 || parts[0] != "" {
		return Argon2Hash{}, ErrInvalidHash
	}

	if parts[1] != variant {
		return Argon2Hash{}, fmt.Errorf("unsupported variant %q: %w", parts[1], ErrInvalidHash)
	}

	h := Argon2Hash{
		Variant: parts[1],
	}

	if _, err := fmt.Sscanf(parts[2], "v=%d", &h.Version); err != nil {
		return Argon2Hash{}, ErrInvalidHash
	}

	if h.Version != argon2.Version {
		return Argon2Hash{}, fmt.Errorf("unsupported version %d: %w", h.Version, ErrInvalidHash)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.MemoryKiB, &h.Iterations, &h.Parallelism); err != nil {
		return Argon2Hash{}, ErrInvalidHash
	}

	var err error
	h.Salt, err = base64.RawStdEncoding.Strict().DecodeString(parts[4])
	if err != nil {
		return Argon2Hash{}, ErrInvalidHash
	}

	h.Hash, err = base64.RawStdEncoding.Strict().DecodeString(parts[5])
	if err != nil {
		return Argon2Hash{}, ErrInvalidHash
	}

	return h, nil
}

// MatchBytes reports whether data hashes to the same value using the
// parameters and salt stored in the hash. The comparison is constant
// time.
func (h Argon2Hash) MatchBytes(data []byte) bool {
	other := argon2.IDKey(data, h.Salt, h.Iterations, h.MemoryKiB, h.Parallelism, uint32(len(h.Hash)))
	return subtle.ConstantTimeCompare(h.Hash, other) == 1
}

// String returns the standard encoding of the hash.
func (h Argon2Hash) String() string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		h.Variant,
		h.Version,
		h.MemoryKiB,
		h.Iterations,
		h.Parallelism,
		base64.RawStdEncoding.EncodeToString(h.Salt),
		base64.RawStdEncoding.EncodeToString(h.Hash),
	)
}

func (h Argon2Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Argon2Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseArgon2Hash(string(text))
	if err != nil {
		return err
	}

	*h = parsed

	return nil
}
