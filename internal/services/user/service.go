// Package user is the local credential table standing in for the
// authentication collaborator. It issues and resolves the tokens the gateway
// uses to identify the current user.
package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"stockbook/config"
	"stockbook/internal/domain"
	sysutils "stockbook/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type account struct {
	user     domain.User
	password []byte
}

type Service struct {
	accounts map[string]account
	secret   []byte
	ttl      time.Duration
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      domain.User `json:"user"`
}

// RolePermissions lists the section tags each seeded role carries.
var RolePermissions = map[string][]string{
	"admin":   {domain.PermissionAll},
	"manager": {domain.SectionProducts, domain.SectionOrders, domain.SectionSales, domain.SectionReports},
	"cashier": {domain.SectionSales, domain.SectionProducts + ":view"},
}

// NewService seeds one account per role. Roles with an empty seed password
// are left out.
func NewService(cfg config.AuthConfig) (*Service, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	s := &Service{
		accounts: make(map[string]account),
		secret:   []byte(cfg.JWTSecret),
		ttl:      ttl,
	}

	seeds := []struct {
		username, name, password string
	}{
		{"admin", "Administrator", cfg.SeedAdminPassword},
		{"manager", "Store Manager", cfg.SeedManagerPassword},
		{"cashier", "Cashier", cfg.SeedCashierPassword},
	}
	for _, seed := range seeds {
		if seed.password == "" {
			log.Printf("No seed password for %s, account disabled", seed.username)
			continue
		}
		if err := s.addAccount(seed.username, seed.name, seed.username, seed.password); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Service) addAccount(username, name, role, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password for %s: %w", username, err)
	}
	s.accounts[strings.ToLower(username)] = account{
		user: domain.User{
			ID:          "USR-" + username,
			Username:    username,
			Name:        name,
			Role:        role,
			Permissions: RolePermissions[role],
		},
		password: hash,
	}
	return nil
}

func (s *Service) Authenticate(ctx context.Context, username, password string) (*LoginResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if username == "" || password == "" {
		return nil, domain.NewValidationError("credentials", "username and password are required", username)
	}

	acc, ok := s.accounts[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.password, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := sysutils.GenerateToken(s.secret, acc.user, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	log.Printf("User %s logged in", acc.user.Username)
	return &LoginResult{Token: token, ExpiresAt: exp, User: acc.user}, nil
}

// CurrentUser resolves a bearer token to its user. It returns nil and an
// error for invalid or expired tokens.
func (s *Service) CurrentUser(token string) (*domain.User, error) {
	claims, err := sysutils.ParseToken(s.secret, token)
	if err != nil {
		return nil, err
	}
	return claims.User(), nil
}

// Users lists the configured accounts without their credentials.
func (s *Service) Users() []domain.User {
	out := make([]domain.User, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, acc.user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}
