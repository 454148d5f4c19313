package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// The transition statements pair the guard and the mutation so concurrent
// attempts with the same token cannot both succeed: the second UPDATE
// matches zero rows because the first one cleared the hash.
var markEmailVerifiedSQL = `UPDATE "accounts" AS "acc"
SET
	"email_verified" = TRUE,
	"email_verification_token_hash" = NULL,
	"email_verification_expires_at" = NULL,
	"updated_at" = ?
WHERE
	"acc"."active" = TRUE
AND "acc"."email_verification_token_hash" = ?
AND "acc"."email_verification_expires_at" > ?
RETURNING *;`

var applyPasswordResetSQL = `UPDATE "accounts" AS "acc"
SET
	"password_hash" = ?,
	"password_changed_at" = ?,
	"password_reset_token_hash" = NULL,
	"password_reset_expires_at" = NULL,
	"updated_at" = ?
WHERE
	"acc"."active" = TRUE
AND "acc"."password_reset_token_hash" = ?
AND "acc"."password_reset_expires_at" > ?
RETURNING *;`

var setVerificationTokenSQL = `UPDATE "accounts" AS "acc"
SET
	"email_verification_token_hash" = ?,
	"email_verification_expires_at" = ?,
	"updated_at" = ?
WHERE
	"acc"."active" = TRUE
AND "acc"."id" = ?
RETURNING *;`

var setResetTokenSQL = `UPDATE "accounts" AS "acc"
SET
	"password_reset_token_hash" = ?,
	"password_reset_expires_at" = ?,
	"updated_at" = ?
WHERE
	"acc"."active" = TRUE
AND "acc"."id" = ?
RETURNING *;`

var updatePasswordSQL = `UPDATE "accounts" AS "acc"
SET
	"password_hash" = ?,
	"password_changed_at" = ?,
	"password_reset_token_hash" = NULL,
	"password_reset_expires_at" = NULL,
	"updated_at" = ?
WHERE
	"acc"."active" = TRUE
AND "acc"."id" = ?
RETURNING *;`

var deactivateAccountSQL = `UPDATE "accounts" AS "acc"
SET
	"active" = FALSE,
	"updated_at" = ?
WHERE
	"acc"."active" = TRUE
AND "acc"."id" = ?
RETURNING *;`

// BunCredentialStore is the Bun-backed CredentialStore.
type BunCredentialStore struct {
	repository.Repository[*Account]
	db  *bun.DB
	now func() time.Time
}

var _ CredentialStore = (*BunCredentialStore)(nil)

// NewBunCredentialStore creates a CredentialStore over the given database.
func NewBunCredentialStore(db *bun.DB) *BunCredentialStore {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
	})

	return &BunCredentialStore{
		Repository: repo,
		db:         db,
		now:        time.Now,
	}
}

// WithClock overrides the time source used to stamp updated_at (useful for
// tests).
func (s *BunCredentialStore) WithClock(clock func() time.Time) *BunCredentialStore {
	if clock != nil {
		s.now = clock
	}
	return s
}

func (s *BunCredentialStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	record := &Account{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Where("?TableAlias.active = TRUE").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return record, nil
}

func (s *BunCredentialStore) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	record := &Account{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.active = TRUE").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return record, nil
}

func (s *BunCredentialStore) FindByVerificationTokenHash(ctx context.Context, hash []byte, notExpiredBefore time.Time) (*Account, error) {
	return s.findByTokenHash(ctx, "email_verification_token_hash", "email_verification_expires_at", hash, notExpiredBefore)
}

func (s *BunCredentialStore) FindByResetTokenHash(ctx context.Context, hash []byte, notExpiredBefore time.Time) (*Account, error) {
	return s.findByTokenHash(ctx, "password_reset_token_hash", "password_reset_expires_at", hash, notExpiredBefore)
}

func (s *BunCredentialStore) findByTokenHash(ctx context.Context, hashColumn, expiryColumn string, hash []byte, notExpiredBefore time.Time) (*Account, error) {
	if len(hash) == 0 {
		return nil, ErrAccountNotFound
	}

	record := &Account{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.? = ?", bun.Ident(hashColumn), hash).
		Where("?TableAlias.? > ?", bun.Ident(expiryColumn), notExpiredBefore).
		Where("?TableAlias.active = TRUE").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return record, nil
}

func (s *BunCredentialStore) CreateAccount(ctx context.Context, account *Account) (*Account, error) {
	account.EnsureDefaults()
	return s.Repository.CreateTx(ctx, s.db, account)
}

func (s *BunCredentialStore) SetVerificationToken(ctx context.Context, id uuid.UUID, hash []byte, expiresAt time.Time) error {
	return s.execTransition(ctx, setVerificationTokenSQL, hash, expiresAt, s.now(), id.String())
}

func (s *BunCredentialStore) MarkEmailVerified(ctx context.Context, hash []byte, notExpiredBefore time.Time) (*Account, error) {
	return s.execTransitionReturning(ctx, markEmailVerifiedSQL, s.now(), hash, notExpiredBefore)
}

func (s *BunCredentialStore) SetResetToken(ctx context.Context, id uuid.UUID, hash []byte, expiresAt time.Time) error {
	return s.execTransition(ctx, setResetTokenSQL, hash, expiresAt, s.now(), id.String())
}

func (s *BunCredentialStore) ApplyPasswordReset(ctx context.Context, hash []byte, notExpiredBefore time.Time, passwordHash string, changedAt time.Time) (*Account, error) {
	return s.execTransitionReturning(ctx, applyPasswordResetSQL, passwordHash, changedAt, s.now(), hash, notExpiredBefore)
}

func (s *BunCredentialStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	return s.execTransition(ctx, updatePasswordSQL, passwordHash, changedAt, s.now(), id.String())
}

func (s *BunCredentialStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.execTransition(ctx, deactivateAccountSQL, s.now(), id.String())
}

func (s *BunCredentialStore) execTransition(ctx context.Context, sql string, args ...any) error {
	_, err := s.execTransitionReturning(ctx, sql, args...)
	return err
}

func (s *BunCredentialStore) execTransitionReturning(ctx context.Context, sql string, args ...any) (*Account, error) {
	var res []*Account
	if err := s.db.NewRaw(sql, args...).Scan(ctx, &res); err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, ErrAccountNotFound
	}

	return res[0], nil
}
