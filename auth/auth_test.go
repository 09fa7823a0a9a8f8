// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaltesting "github.com/kauffinger/relay/internal/testing"
)

func TestHTTPTransportInjectsBearerToken(t *testing.T) {
	issuer := internaltesting.NewFakeIssuer("http://issuer.test")
	token, err := issuer.Mint("user-1", time.Hour)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		sub, err := issuer.Verify(strings.TrimPrefix(authz, "Bearer "))
		if err != nil || sub != "user-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := &http.Client{Transport: &HTTPTransport{Source: StaticTokenSource(token)}}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPTransportUnauthorized(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		client := &http.Client{Transport: &HTTPTransport{Source: StaticTokenSource("expired")}}

		_, err := client.Get(srv.URL)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnauthorized)
		srv.Close()
	}
}

func TestHTTPTransportDoesNotMutateRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	client := &http.Client{Transport: &HTTPTransport{Source: StaticTokenSource("tok")}}
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, req.Header.Get("Authorization"), "original request was mutated")
}
