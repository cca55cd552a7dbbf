package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"

	"github.com/purpleforest/purpleforest/internal/model"
	"github.com/purpleforest/purpleforest/internal/repository"
)

var (
	// ErrUnknownUser and ErrIncorrectPassword are deliberately distinct:
	// the login surface reports which one failed.
	ErrUnknownUser       = errors.New("unknown user")
	ErrIncorrectPassword = errors.New("incorrect password")
)

// KDF work factors are process-wide constants. Changing them changes the
// format of future hashes; stored hashes keep verifying because the salt
// and hash are stored together and the parameters never vary per row.
const (
	scryptN      = 8
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64

	saltLength = 10
)

const saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// CredentialService establishes user identities: registration with salted
// scrypt hashes and password verification at login.
type CredentialService interface {
	// Register creates the user or fails with
	// repository.ErrDuplicateUsername, leaving no partial write.
	Register(ctx context.Context, username, password string) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
}

type credentialService struct {
	users repository.UserRepository
}

func NewCredentialService(users repository.UserRepository) CredentialService {
	return &credentialService{users: users}
}

func (s *credentialService) Register(ctx context.Context, username, password string) (*model.User, error) {
	salt, err := generateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := deriveHash(password, salt)
	if err != nil {
		return nil, fmt.Errorf("derive hash: %w", err)
	}
	return s.users.Create(ctx, username, salt, hash)
}

func (s *credentialService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnknownUser
	}
	hash, err := deriveHash(password, user.PasswordSalt)
	if err != nil {
		return nil, fmt.Errorf("derive hash: %w", err)
	}
	if subtle.ConstantTimeCompare(hash, user.PasswordHash) != 1 {
		return nil, ErrIncorrectPassword
	}
	return user, nil
}

func deriveHash(password string, salt []byte) ([]byte, error) {
	return scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
}

func generateSalt() ([]byte, error) {
	// Rejection sampling keeps the draw uniform over the 62-character
	// alphabet; a plain modulo would skew toward its low end.
	const limit = 256 - 256%len(saltAlphabet)
	salt := make([]byte, 0, saltLength)
	buf := make([]byte, saltLength)
	for len(salt) < saltLength {
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			salt = append(salt, saltAlphabet[int(b)%len(saltAlphabet)])
			if len(salt) == saltLength {
				break
			}
		}
	}
	return salt, nil
}
