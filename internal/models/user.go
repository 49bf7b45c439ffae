package models

import "time"

// SubUser is a staff login. Password holds a bcrypt hash once hydrated and
// is cleared by Public before the record leaves the service.
type SubUser struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Status   string `json:"status,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password,omitempty"`
}

func (u SubUser) RecordKey() string { return u.Key }

func (u SubUser) WithKey(key string) SubUser {
	u.Key = key
	return u
}

// Public returns the user without its password hash
func (u SubUser) Public() SubUser {
	u.Password = ""
	return u
}

// UserProfile is the signed-in user's profile singleton
type UserProfile struct {
	Key    string `json:"key,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	Role   string `json:"role"`
	Status string `json:"status,omitempty"`
}

// Session is one signed-in device
type Session struct {
	Key        string    `json:"key"`
	TokenID    string    `json:"tokenId"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName,omitempty"`
	Device     string    `json:"device,omitempty"`
	IP         string    `json:"ip,omitempty"`
	LastActive time.Time `json:"lastActive"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Current    bool      `json:"current"`
}

func (s Session) RecordKey() string { return s.Key }

func (s Session) WithKey(key string) Session {
	s.Key = key
	return s
}
