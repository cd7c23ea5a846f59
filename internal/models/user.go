package models

import "strings"

// User is the signed-in identity. A nil *User means logged out.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Credential is the identity returned by a successful sign-in or account creation.
type Credential struct {
	UID         string
	DisplayName string
	Email       string
}

// User converts the credential into the identity kept by the application state.
func (c Credential) User() User {
	return User{ID: c.UID, Name: c.DisplayName}
}

// AuthProvider describes an OAuth provider sign-in request.
type AuthProvider struct {
	Name   string
	Scopes []string
}

// NewAuthProvider creates an [AuthProvider] with no scopes.
func NewAuthProvider(name string) *AuthProvider {
	return &AuthProvider{Name: name}
}

// AddScope requests an additional scope; duplicates and blanks are ignored.
func (p *AuthProvider) AddScope(scope string) {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return
	}
	for _, s := range p.Scopes {
		if s == scope {
			return
		}
	}
	p.Scopes = append(p.Scopes, scope)
}
