package password

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/Miraines/MoonyAndStarry/board-service/internal/infra/config"
	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and checks passwords. Compare reports a mismatch as (false, nil);
// an error means the stored hash itself is unusable.
type Hasher interface {
	Hash(plain string) (string, error)
	Compare(plain, hash string) (bool, error)
}

const (
	BcryptCost = 10

	// bcrypt ignores (x/crypto rejects) input past this many bytes.
	bcryptMaxInput = 72
)

var argonParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

func New(name string) (Hasher, error) {
	switch name {
	case config.HasherBcrypt, "":
		return Bcrypt{Cost: BcryptCost}, nil
	case config.HasherArgon2id:
		return Argon2id{Params: argonParams}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}

type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword(bcryptInput(plain), b.Cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b Bcrypt) Compare(plain, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

// bcryptInput digests passwords longer than bcrypt accepts, so every byte of a
// long password still counts.
func bcryptInput(plain string) []byte {
	if len(plain) <= bcryptMaxInput {
		return []byte(plain)
	}
	sum := sha256.Sum256([]byte(plain))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

type Argon2id struct {
	Params *argon2id.Params
}

func (a Argon2id) Hash(plain string) (string, error) {
	return argon2id.CreateHash(plain, a.Params)
}

func (a Argon2id) Compare(plain, hash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(plain, hash)
}
