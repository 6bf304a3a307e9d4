package supabase

import (
	"context"
	"net/url"
	"time"

	"github.com/ekencleng/kencleng-api/internal/domain"
)

// userRow maps the users table columns.
type userRow struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	FullName     *string `json:"full_name"`
	Role         string  `json:"role"`
	PasswordHash string  `json:"password_hash"`
	CreatedAt    string  `json:"created_at,omitempty"`
}

func (r userRow) toDomain() domain.User {
	created, _ := time.Parse(time.RFC3339, r.CreatedAt)
	u := domain.User{
		ID:           r.ID,
		Email:        r.Email,
		Role:         domain.Role(r.Role),
		PasswordHash: r.PasswordHash,
		CreatedAt:    created,
	}
	if r.FullName != nil {
		u.FullName = *r.FullName
	}
	return u
}

// GetUserByEmail fetches an operator by email, or nil when unknown.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUserByEmail")
	defer span.End()

	var rows []userRow
	path := "users?email=eq." + url.QueryEscape(email) + "&limit=1"
	if err := c.getJSON(ctx, path, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/users", Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	u := rows[0].toDomain()
	return &u, nil
}

// GetUserByID fetches an operator by ID.
func (c *Client) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUserByID")
	defer span.End()

	var rows []userRow
	path := "users?id=eq." + url.QueryEscape(id) + "&limit=1"
	if err := c.getJSON(ctx, path, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/users", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	u := rows[0].toDomain()
	return &u, nil
}

// refreshTokenRow maps the auth_refresh_tokens table columns.
type refreshTokenRow struct {
	ID        string `json:"id,omitempty"`
	UserID    string `json:"user_id"`
	TokenHash string `json:"token_hash"`
	ExpiresAt string `json:"expires_at"`
	Revoked   bool   `json:"revoked"`
}

// StoreRefreshToken persists a hashed refresh token.
func (c *Client) StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	ctx, span := tracer.Start(ctx, "Supabase.StoreRefreshToken")
	defer span.End()

	row := refreshTokenRow{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	}
	if err := c.insertRow(ctx, "auth_refresh_tokens", row, nil); err != nil {
		return &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}
	return nil
}

// GetRefreshToken looks up a stored token by hash, or nil when unknown
// or revoked.
func (c *Client) GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetRefreshToken")
	defer span.End()

	var rows []refreshTokenRow
	path := "auth_refresh_tokens?token_hash=eq." + url.QueryEscape(tokenHash) + "&revoked=eq.false&limit=1"
	if err := c.getJSON(ctx, path, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	r := rows[0]
	expires, _ := time.Parse(time.RFC3339, r.ExpiresAt)
	return &domain.AuthRefreshToken{
		ID:        r.ID,
		UserID:    r.UserID,
		TokenHash: r.TokenHash,
		ExpiresAt: expires,
		Revoked:   r.Revoked,
	}, nil
}

// RevokeRefreshToken marks one stored token revoked.
func (c *Client) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeRefreshToken")
	defer span.End()

	path := "auth_refresh_tokens?token_hash=eq." + url.QueryEscape(tokenHash)
	if err := c.patchRows(ctx, path, map[string]any{"revoked": true}, nil); err != nil {
		return &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}
	return nil
}

// RevokeAllRefreshTokens revokes every token a user holds.
func (c *Client) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeAllRefreshTokens")
	defer span.End()

	path := "auth_refresh_tokens?user_id=eq." + url.QueryEscape(userID)
	if err := c.patchRows(ctx, path, map[string]any{"revoked": true}, nil); err != nil {
		return &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}
	return nil
}
