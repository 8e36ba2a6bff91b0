package service

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"staybook/internal/repository"
)

type HostAuthService interface {
	Login(email, password string) (string, error)
	CreateHost(email, name, password string) error
}

type hostAuthService struct {
	repo repository.HostRepository
}

func NewHostAuthService(repo repository.HostRepository) HostAuthService {
	return &hostAuthService{repo: repo}
}

func (s *hostAuthService) Login(email, password string) (string, error) {
	host, err := s.repo.GetByEmail(email)
	if err != nil {
		return "", err
	}
	if host == nil {
		return "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(host.PasswordHash), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET not set")
	}

	claims := jwt.MapClaims{
		"sub":   host.ID,
		"email": host.Email,
		"role":  "host",
		"exp":   time.Now().Add(time.Hour * 24).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *hostAuthService) CreateHost(email, name, password string) error {
	if email == "" || password == "" {
		return errors.New("email and password cannot be empty")
	}
	return s.repo.CreateHost(email, name, password)
}
