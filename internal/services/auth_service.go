// auth_service.go
//
// Record store and permission service for the RealE-Market real estate CRM
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of crmdb.
// crmdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// crmdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with crmdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/localnerve/crmdb/internal/models"
	"github.com/localnerve/crmdb/internal/store"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned by Login and ChangePassword when the
	// user name or password does not match
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken is returned for a token that is malformed, expired,
	// or whose session was signed out
	ErrInvalidToken = errors.New("invalid or expired session token")
	// ErrBuiltinAccount is returned when changing the built-in account's password
	ErrBuiltinAccount = errors.New("the built-in account password is set by configuration")
)

// builtinUserID identifies the configured bypass account in tokens and sessions
const builtinUserID = "builtin-admin"

// AuthConfig configures an Auth service
type AuthConfig struct {
	Secret         string
	TTL            time.Duration
	BypassUsername string
	BypassPassword string
	SuperAdminRole string
	// Cost is the bcrypt cost for new hashes; 0 means bcrypt.DefaultCost
	Cost   int
	Logger *logrus.Logger
	Now    func() time.Time
}

// Auth signs staff in against the subUsers collection and issues session tokens
type Auth struct {
	store  *store.Store
	cfg    AuthConfig
	logger *logrus.Logger
	now    func() time.Time
}

// Claims are carried in every session token
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.StandardClaims
}

// UserID is the id of the signed-in sub-user
func (c *Claims) UserID() string { return c.Subject }

// SessionID is the token id shared with the stored session
func (c *Claims) SessionID() string { return c.Id }

// LoginResult is returned by a successful Login
type LoginResult struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expiresAt"`
	Profile   models.UserProfile `json:"profile"`
	Session   models.Session     `json:"session"`
}

// NewAuth creates the auth service
func NewAuth(s *store.Store, cfg AuthConfig) *Auth {
	if cfg.TTL <= 0 {
		cfg.TTL = 72 * time.Hour
	}
	if cfg.Cost == 0 {
		cfg.Cost = bcrypt.DefaultCost
	}
	if cfg.SuperAdminRole == "" {
		cfg.SuperAdminRole = "Administrator"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Auth{store: s, cfg: cfg, logger: logger, now: now}
}

// HashPassword returns a bcrypt hash of password
func (a *Auth) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cfg.Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// isHash reports whether s is already a bcrypt hash
func isHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// EnsurePasswordHashes replaces clear-text sub-user passwords with bcrypt
// hashes. Seeded demo users arrive in clear text.
func (a *Auth) EnsurePasswordHashes(ctx context.Context) error {
	users := store.SubUsers.List(a.store)
	hashed := make(map[string]string)
	for _, u := range users {
		if u.Password == "" || isHash(u.Password) {
			continue
		}
		hash, err := a.HashPassword(u.Password)
		if err != nil {
			return err
		}
		hashed[u.Key] = hash
	}
	if len(hashed) == 0 {
		return nil
	}

	err := a.store.Update(ctx, func(tx *store.Tx) error {
		for _, u := range store.SubUsers.ListIn(tx) {
			if hash, ok := hashed[u.Key]; ok && !isHash(u.Password) {
				u.Password = hash
				store.SubUsers.UpdateIn(tx, u)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store password hashes: %w", err)
	}
	a.logger.WithField("count", len(hashed)).Info("Hashed clear-text sub-user passwords")
	return nil
}

// authenticate resolves username and password to a profile. username
// matches a sub-user's email or name.
func (a *Auth) authenticate(username, password string) (string, models.UserProfile, error) {
	for _, u := range store.SubUsers.List(a.store) {
		if u.Email != username && u.Name != username {
			continue
		}
		if u.Password == "" {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil {
			return u.Key, models.UserProfile{
				Key:    u.Key,
				Name:   u.Name,
				Email:  u.Email,
				Phone:  u.Phone,
				Role:   u.Role,
				Status: u.Status,
			}, nil
		}
	}

	if a.cfg.BypassUsername != "" && username == a.cfg.BypassUsername && password == a.cfg.BypassPassword {
		return builtinUserID, models.UserProfile{
			Name:  "Super Admin",
			Email: "admin@realdave.com",
			Role:  a.cfg.SuperAdminRole,
			Phone: "0000000000",
		}, nil
	}

	return "", models.UserProfile{}, ErrInvalidCredentials
}

// Login verifies credentials, records the session and sets the profile
// singleton in one store transaction, then signs a token for the session.
func (a *Auth) Login(ctx context.Context, username, password, device, ip string) (LoginResult, error) {
	userID, profile, err := a.authenticate(username, password)
	if err != nil {
		a.logger.WithField("username", username).Warn("Failed sign-in attempt")
		return LoginResult{}, err
	}

	now := a.now().UTC()
	expires := now.Add(a.cfg.TTL)
	session := models.Session{
		TokenID:    uuid.New().String(),
		UserID:     userID,
		UserName:   profile.Name,
		Device:     device,
		IP:         ip,
		LastActive: now,
		ExpiresAt:  expires,
		Current:    true,
	}

	err = a.store.Update(ctx, func(tx *store.Tx) error {
		for _, s := range store.ActiveSessions.ListIn(tx) {
			switch {
			case s.ExpiresAt.Before(now):
				store.ActiveSessions.DeleteIn(tx, s.Key)
			case s.Current && s.UserID == userID:
				s.Current = false
				store.ActiveSessions.UpdateIn(tx, s)
			}
		}
		session = store.ActiveSessions.AddIn(tx, session)
		store.UserProfile.SetIn(tx, profile)
		return nil
	})
	if err != nil {
		return LoginResult{}, fmt.Errorf("record session: %w", err)
	}

	claims := &Claims{
		Name:  profile.Name,
		Email: profile.Email,
		Role:  profile.Role,
		StandardClaims: jwt.StandardClaims{
			Id:        session.TokenID,
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: expires.Unix(),
			Issuer:    "crmdb",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.cfg.Secret))
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}

	a.logger.WithFields(logrus.Fields{"user": profile.Email, "role": profile.Role}).Info("User signed in")
	return LoginResult{Token: token, ExpiresAt: expires, Profile: profile, Session: session}, nil
}

// ValidateToken parses a token and checks its session is still active
func (a *Auth) ValidateToken(token string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}, SkipClaimsValidation: true}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(a.cfg.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == 0 || a.now().Unix() > claims.ExpiresAt {
		return nil, ErrInvalidToken
	}
	if _, ok := a.session(claims.SessionID()); !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (a *Auth) session(tokenID string) (models.Session, bool) {
	if tokenID == "" {
		return models.Session{}, false
	}
	for _, s := range store.ActiveSessions.List(a.store) {
		if s.TokenID == tokenID {
			return s, true
		}
	}
	return models.Session{}, false
}

// Logout removes the session behind claims. The token stops validating.
func (a *Auth) Logout(ctx context.Context, claims *Claims) error {
	s, ok := a.session(claims.SessionID())
	if !ok {
		return nil
	}
	_, err := store.ActiveSessions.Delete(ctx, a.store, s.Key)
	return err
}

// Sessions lists every user's active sessions
func (a *Auth) Sessions() []models.Session {
	return store.ActiveSessions.List(a.store)
}

// SessionsFor lists the active sessions of one user
func (a *Auth) SessionsFor(userID string) []models.Session {
	out := []models.Session{}
	for _, s := range store.ActiveSessions.List(a.store) {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out
}

// RevokeSession signs a device out by session key. A non-empty owner limits
// the revoke to that user's sessions; another user's session is NotFound.
func (a *Auth) RevokeSession(ctx context.Context, key, owner string) (store.Result, error) {
	res := store.NotFound
	err := a.store.Update(ctx, func(tx *store.Tx) error {
		s, ok := store.ActiveSessions.GetIn(tx, key)
		if !ok || (owner != "" && s.UserID != owner) {
			return nil
		}
		res = store.ActiveSessions.DeleteIn(tx, key)
		return nil
	})
	return res, err
}

// ChangePassword verifies the current password and stores a hash of the new one
func (a *Auth) ChangePassword(ctx context.Context, claims *Claims, current, next string) error {
	if claims.UserID() == builtinUserID {
		return ErrBuiltinAccount
	}
	u, ok := store.SubUsers.Get(a.store, claims.UserID())
	if !ok || bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	hash, err := a.HashPassword(next)
	if err != nil {
		return err
	}
	u.Password = hash
	res, err := store.SubUsers.Update(ctx, a.store, u)
	if err != nil {
		return err
	}
	if res == store.NotFound {
		return ErrInvalidCredentials
	}
	return nil
}
