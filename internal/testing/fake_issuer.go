// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package testing holds fakes shared by this module's tests.
package testing

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// A FakeIssuer mints and verifies HS256-signed bearer tokens, standing in for
// an identity provider in auth tests.
type FakeIssuer struct {
	Issuer string
	key    []byte
}

func NewFakeIssuer(issuer string) *FakeIssuer {
	return &FakeIssuer{Issuer: issuer, key: []byte("fake-secret-key")}
}

// Mint returns a signed token for the given subject, valid for ttl.
func (f *FakeIssuer) Mint(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": f.Issuer,
		"sub": subject,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.key)
}

// Verify parses tokenString and returns its subject, or an error if the
// signature is invalid or the token has expired.
func (f *FakeIssuer) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return f.key, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	return token.Claims.GetSubject()
}
