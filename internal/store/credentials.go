package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/learnhub/auditkeeper/internal/models"
)

// CredentialStore resolves opaque admin bearer tokens to identities.
type CredentialStore struct {
	Base
}

// NewCredentialStore creates a CredentialStore.
func NewCredentialStore(base Base) *CredentialStore {
	return &CredentialStore{Base: base}
}

// HashToken returns the hex-encoded SHA-256 of a raw token. Only hashes are stored.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// VerifyToken looks up an unrevoked credential by token hash.
// Unknown or revoked tokens yield models.ErrUnauthenticated.
func (s *CredentialStore) VerifyToken(ctx context.Context, token string) (*models.Identity, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var id models.Identity

	err := s.Pool.QueryRow(ctx,
		`SELECT subject, COALESCE(email, ''), role FROM admin_credentials
		 WHERE key_hash = $1 AND revoked_at IS NULL`,
		HashToken(token),
	).Scan(&id.Subject, &id.Email, &id.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("looking up credential: %w", err)
	}

	return &id, nil
}

// CreateCredential stores the hash of token for id. The raw token is never persisted.
func (s *CredentialStore) CreateCredential(ctx context.Context, id models.Identity, token string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.Pool.Exec(ctx,
		`INSERT INTO admin_credentials (subject, email, role, key_hash) VALUES ($1, $2, $3, $4)`,
		id.Subject, nullIfEmpty(id.Email), string(id.Role), HashToken(token),
	)
	if err != nil {
		return fmt.Errorf("creating credential: %w", err)
	}

	return nil
}

// RevokeCredential marks every credential of subject as revoked.
func (s *CredentialStore) RevokeCredential(ctx context.Context, subject string) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx,
		`UPDATE admin_credentials SET revoked_at = NOW() WHERE subject = $1 AND revoked_at IS NULL`,
		subject,
	)
	if err != nil {
		return 0, fmt.Errorf("revoking credential: %w", err)
	}

	return tag.RowsAffected(), nil
}
