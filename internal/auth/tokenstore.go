// SPDX-License-Identifier: AGPL-3.0-or-later
// Accord - a chat-and-voice platform server
// Copyright (C) 2026 The Accord Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/accordchat/accordserver/internal/repository"
)

var (
	// ErrTokenNotFound is returned by Revoke when the raw token does not
	// resolve to a stored hash; callers generally treat it as a no-op.
	ErrTokenNotFound = errors.New("auth: token not found")
)

// TokenStore resolves opaque bearer/bot tokens to a Principal, hashing
// every lookup against the repository's token table; the raw token is
// never persisted.
type TokenStore struct {
	repo repository.Repository
}

// NewTokenStore builds a TokenStore backed by repo.
func NewTokenStore(repo repository.Repository) *TokenStore {
	return &TokenStore{repo: repo}
}

// Resolve inspects an Authorization header and returns the Principal it
// names, or nil if the header is absent, malformed, or names an
// expired/unknown token.
func (s *TokenStore) Resolve(ctx context.Context, header string) (*Principal, error) {
	switch {
	case strings.HasPrefix(header, "Bot "):
		return s.resolve(ctx, strings.TrimPrefix(header, "Bot "), repository.TokenKindBot)
	case strings.HasPrefix(header, "Bearer "):
		return s.resolve(ctx, strings.TrimPrefix(header, "Bearer "), repository.TokenKindUser)
	default:
		return nil, nil
	}
}

func (s *TokenStore) resolve(ctx context.Context, raw string, kind repository.TokenKind) (*Principal, error) {
	hash := hashToken(raw)
	tok, err := s.repo.GetTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth: resolve token: %w", err)
	}
	if tok.Kind != kind {
		return nil, nil
	}
	if tok.ExpiresAt != nil && tok.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	u, err := s.repo.GetUser(ctx, tok.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth: resolve principal: %w", err)
	}
	return &Principal{UserID: u.ID, IsBot: u.IsBot, IsAdmin: u.IsAdmin}, nil
}

// CreateUserToken mints a fresh bearer token of the form
// hex(now_ns).hex(rand_u64), stores only its hash with the given expiry,
// and returns the raw token once. The caller must hand it to the client
// immediately; it cannot be recovered afterward.
func (s *TokenStore) CreateUserToken(ctx context.Context, userID repository.ID, ttl time.Duration) (string, error) {
	return s.createToken(ctx, userID, repository.TokenKindUser, &ttl)
}

// CreateBotToken mints a non-expiring bot token for userID (the bot's own
// User row, per the Application bootstrap in repository.Repository).
func (s *TokenStore) CreateBotToken(ctx context.Context, userID repository.ID) (string, error) {
	return s.createToken(ctx, userID, repository.TokenKindBot, nil)
}

func (s *TokenStore) createToken(ctx context.Context, userID repository.ID, kind repository.TokenKind, ttl *time.Duration) (string, error) {
	raw, err := newRawToken()
	if err != nil {
		return "", fmt.Errorf("auth: generate token: %w", err)
	}

	tok := &repository.Token{
		TokenHash: hashToken(raw),
		Kind:      kind,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if ttl != nil {
		expires := time.Now().UTC().Add(*ttl)
		tok.ExpiresAt = &expires
	}
	if err := s.repo.CreateToken(ctx, tok); err != nil {
		return "", fmt.Errorf("auth: store token: %w", err)
	}
	return raw, nil
}

// Revoke deletes the stored hash for a single raw token.
func (s *TokenStore) Revoke(ctx context.Context, raw string) error {
	if err := s.repo.DeleteTokenByHash(ctx, hashToken(raw)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("auth: revoke token: %w", err)
	}
	return nil
}

// RevokeAllForUser deletes every token (user and bot) issued to userID.
func (s *TokenStore) RevokeAllForUser(ctx context.Context, userID repository.ID) error {
	if err := s.repo.DeleteTokensForUser(ctx, userID); err != nil {
		return fmt.Errorf("auth: revoke all tokens: %w", err)
	}
	return nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func newRawToken() (string, error) {
	var nonce [8]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	now := uint64(time.Now().UnixNano())
	var nowBuf [8]byte
	binary.BigEndian.PutUint64(nowBuf[:], now)
	return fmt.Sprintf("%s.%s", hex.EncodeToString(nowBuf[:]), hex.EncodeToString(nonce[:])), nil
}
