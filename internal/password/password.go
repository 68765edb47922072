package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Params tunes the argon2id cost. The zero value is not usable; use DefaultParams.
type Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// DefaultParams are used by Hash.
var DefaultParams = Params{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 2,
	KeyLen:  32,
	SaltLen: 16,
}

const argonPrefix = "$argon2id$"

// ErrInvalidHash is returned when a stored hash cannot be decoded.
var ErrInvalidHash = errors.New("invalid password hash")

// Hash returns an encoded argon2id hash using DefaultParams.
func Hash(plain string) (string, error) {
	return HashWith(plain, DefaultParams)
}

// HashWith returns an encoded argon2id hash with explicit parameters.
func HashWith(plain string, p Params) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	sum := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory,
		p.Time,
		p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// Verify reports whether plain matches the stored hash. Both argon2id hashes
// and bcrypt hashes imported from earlier accounts are accepted.
func Verify(plain, hash string) (bool, error) {
	switch {
	case strings.HasPrefix(hash, argonPrefix):
		return verifyArgon(plain, hash)
	case isBcrypt(hash):
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
		}
		return true, nil
	default:
		return false, ErrInvalidHash
	}
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

func verifyArgon(plain, hash string) (bool, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		return false, ErrInvalidHash
	}

	version, err := parseVersion(parts[2])
	if err != nil || version != argon2.Version {
		return false, ErrInvalidHash
	}

	mem, timeCost, threads, err := parseParams(parts[3])
	if err != nil {
		return false, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrInvalidHash
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false, ErrInvalidHash
	}

	actual := argon2.IDKey([]byte(plain), salt, timeCost, mem, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(actual, expected) == 1, nil
}

func parseVersion(value string) (int, error) {
	raw, ok := strings.CutPrefix(value, "v=")
	if !ok {
		return 0, ErrInvalidHash
	}
	return strconv.Atoi(raw)
}

func parseParams(value string) (mem uint32, timeCost uint32, threads uint8, err error) {
	fields := strings.Split(value, ",")
	if len(fields) != 3 {
		return 0, 0, 0, ErrInvalidHash
	}
	if mem, err = uintParam(fields[0], "m=", 32); err != nil {
		return 0, 0, 0, err
	}
	if timeCost, err = uintParam(fields[1], "t=", 32); err != nil {
		return 0, 0, 0, err
	}
	p, err := uintParam(fields[2], "p=", 8)
	if err != nil {
		return 0, 0, 0, err
	}
	return mem, timeCost, uint8(p), nil
}

func uintParam(value, prefix string, bits int) (uint32, error) {
	raw, ok := strings.CutPrefix(value, prefix)
	if !ok {
		return 0, ErrInvalidHash
	}
	parsed, err := strconv.ParseUint(raw, 10, bits)
	if err != nil {
		return 0, ErrInvalidHash
	}
	return uint32(parsed), nil
}
