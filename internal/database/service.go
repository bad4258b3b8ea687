package database

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminService provides authentication and dashboard queries for the admin API
type AdminService struct {
	repo          *Repository
	jwtSecret     []byte
	adminUser     string
	adminPassword string
	tokenTTL      time.Duration
}

// NewAdminService creates a new admin service
func NewAdminService(repo *Repository, jwtSecret, adminUser, adminPassword string) *AdminService {
	return &AdminService{
		repo:          repo,
		jwtSecret:     []byte(jwtSecret),
		adminUser:     adminUser,
		adminPassword: adminPassword,
		tokenTTL:      24 * time.Hour,
	}
}

// Authenticate checks admin credentials and returns a session token
func (s *AdminService) Authenticate(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.adminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) == 1
	if !userOK || !passOK {
		return "", fmt.Errorf("invalid credentials")
	}

	return s.GenerateSessionToken(username)
}

// GenerateSessionToken generates a JWT token for the admin session
func (s *AdminService) GenerateSessionToken(subject string) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(s.tokenTTL).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateSessionToken validates a JWT token and returns the subject
func (s *AdminService) ValidateSessionToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		subject, ok := claims["sub"].(string)
		if !ok {
			return "", fmt.Errorf("subject not found in token")
		}
		return subject, nil
	}

	return "", fmt.Errorf("invalid token")
}

// GetSiteStatistics returns the aggregated content counts
func (s *AdminService) GetSiteStatistics() (*SiteStatistics, error) {
	return s.repo.GetSiteStatistics()
}
