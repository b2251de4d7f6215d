package service

import (
	"errors"

	"tradel/pkg/hash"
	"tradel/pkg/jwt"
)

var ErrInvalidCreds = errors.New("invalid credentials")

// Service authenticates the single configured operator account. There is no
// operator table: credentials come from the environment.
type Service struct {
	email        string
	passwordHash string
	jwtSecret    string
}

func NewService(email, passwordHash, jwtSecret string) *Service {
	return &Service{email: email, passwordHash: passwordHash, jwtSecret: jwtSecret}
}

func (s *Service) Login(email, password string) (string, error) {
	if s.email == "" || s.passwordHash == "" {
		return "", ErrInvalidCreds
	}
	if email != s.email || !hash.Compare(s.passwordHash, password) {
		return "", ErrInvalidCreds
	}
	return jwt.GenerateToken(s.jwtSecret, email)
}
