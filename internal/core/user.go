package core

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

const DefaultCurrency = "USD"

// User is an account holder. PasswordHash and GoogleID are never serialised.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	AvatarURL    string    `json:"avatar_url"`
	Currency     string    `json:"currency"`
	PasswordHash string    `json:"-"`
	GoogleID     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks an address is well formed.
func ValidateEmail(email string) error {
	if email == "" {
		return Invalid("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return Invalid("email", "is not a valid address")
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return Invalid("password", "must be at least 8 characters")
	}
	if len(password) > 72 {
		return Invalid("password", "must be at most 72 bytes")
	}
	return nil
}

// ProfileUpdate holds the editable profile fields; nil leaves a field as is.
type ProfileUpdate struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
	Currency  *string `json:"currency"`
}

// Apply validates the update and writes it onto u.
func (p ProfileUpdate) Apply(u *User) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" || utf8.RuneCountInString(name) > 100 {
			return Invalid("name", "must be between 1 and 100 characters")
		}
		u.Name = name
	}
	if p.AvatarURL != nil {
		if len(*p.AvatarURL) > 2048 {
			return Invalid("avatar_url", "is too long")
		}
		u.AvatarURL = strings.TrimSpace(*p.AvatarURL)
	}
	if p.Currency != nil {
		cur := strings.ToUpper(strings.TrimSpace(*p.Currency))
		if len(cur) != 3 || strings.IndexFunc(cur, func(r rune) bool { return r < 'A' || r > 'Z' }) >= 0 {
			return Invalid("currency", "must be a three letter ISO code")
		}
		u.Currency = cur
	}
	return nil
}
