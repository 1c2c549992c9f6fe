package service

import (
	"errors"

	"kidquiz/config"
	"kidquiz/internal/auth"
	"kidquiz/internal/models"
	"kidquiz/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists  = errors.New("email already registered")
	ErrInvalidCreds = errors.New("invalid email or password")
)

type AuthService struct {
	cfg       *config.Config
	guardians *repository.GuardianRepository
}

func NewAuthService(cfg *config.Config, guardians *repository.GuardianRepository) *AuthService {
	return &AuthService{cfg: cfg, guardians: guardians}
}

func (s *AuthService) Register(email, displayName, password string) (*models.Guardian, string, string, error) {
	_, err := s.guardians.GetByEmail(email)
	if err == nil {
		return nil, "", "", ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	g := &models.Guardian{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
	}
	if err := s.guardians.Create(g); err != nil {
		return nil, "", "", err
	}
	access, refresh, err := s.issueTokens(g)
	return g, access, refresh, err
}

func (s *AuthService) Login(email, password string) (*models.Guardian, string, string, error) {
	g, err := s.guardians.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(g.PasswordHash), []byte(password)) != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, refresh, err := s.issueTokens(g)
	return g, access, refresh, err
}

// Refresh exchanges a refresh token for a new access/refresh pair.
func (s *AuthService) Refresh(refreshToken string) (*models.Guardian, string, string, error) {
	id, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return nil, "", "", err
	}
	g, err := s.guardians.GetByID(id)
	if err != nil {
		return nil, "", "", auth.ErrInvalidToken
	}
	access, refresh, err := s.issueTokens(g)
	return g, access, refresh, err
}

func (s *AuthService) issueTokens(g *models.Guardian) (string, string, error) {
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, g.ID, g.Email)
	if err != nil {
		return "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, g.ID)
	if err != nil {
		return access, "", err
	}
	return access, refresh, nil
}
