package domain

import "strings"

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	Entity
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// UserSummary is the reviewer or owner identity attached to listings.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary returns the public identity of u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName collapses runs of whitespace in a display name.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
