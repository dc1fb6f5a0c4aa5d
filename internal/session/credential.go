// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Built-in operator credential, used when the config does not override it.
const (
	DefaultLogin    = "admin"
	defaultPassword = "admin"
)

// Credential is the single operator login accepted by the Gate.
type Credential struct {
	Login        string
	PasswordHash []byte
}

var (
	defaultOnce sync.Once
	defaultCred Credential
	defaultErr  error
)

// DefaultCredential returns the built-in admin/admin credential. The hash is
// computed once per process.
func DefaultCredential() (Credential, error) {
	defaultOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
		defaultCred, defaultErr = Credential{Login: DefaultLogin, PasswordHash: h}, err
	})
	return defaultCred, defaultErr
}

// NewCredential builds a credential from a configured login and bcrypt
// hash. An empty login falls back to DefaultLogin; an empty hash falls back
// to the built-in password.
func NewCredential(login, passwordHash string) (Credential, error) {
	if login == "" {
		login = DefaultLogin
	}
	if passwordHash == "" {
		def, err := DefaultCredential()
		if err != nil {
			return Credential{}, err
		}
		return Credential{Login: login, PasswordHash: def.PasswordHash}, nil
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return Credential{}, fmt.Errorf("admin.password_hash is not a bcrypt hash: %w", err)
	}
	return Credential{Login: login, PasswordHash: []byte(passwordHash)}, nil
}

// HashPassword returns a bcrypt hash suitable for admin.password_hash.
func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("password must not be empty")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Matches reports whether username and password match the credential.
func (c Credential) Matches(username, password string) bool {
	loginOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Login)) == 1
	passOK := bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(password)) == nil
	return loginOK && passOK
}
