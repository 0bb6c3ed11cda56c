package waitlist

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=waitlist

import (
	"context"
	"errors"

	"github.com/akeren/launchwait/internal/models"
	apperrors "github.com/akeren/launchwait/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation is the SQLSTATE Postgres reports for a unique index hit.
const pgUniqueViolation = "23505"

type InsertStatus int

const (
	InsertOK InsertStatus = iota
	InsertDuplicateKey
	InsertFailed
)

func (s InsertStatus) String() string {
	switch s {
	case InsertOK:
		return "ok"
	case InsertDuplicateKey:
		return "duplicate_key"
	default:
		return "failed"
	}
}

// InsertResult is the outcome of a single insert. Message carries the store's
// own description of the failure when Status is InsertFailed.
type InsertResult struct {
	Status  InsertStatus
	Message string
	Err     error
}

type WaitlistRepository interface {
	// Insert persists one entry. It never retries.
	Insert(ctx context.Context, entry *models.WaitlistEntry) InsertResult
	// Count returns the number of registered entries.
	Count(ctx context.Context) (int64, error)
}

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

func (wr *waitlistRepository) Insert(ctx context.Context, entry *models.WaitlistEntry) InsertResult {
	if entry == nil {
		return InsertResult{Status: InsertFailed, Message: "nothing to insert"}
	}

	err := wr.db.WithContext(ctx).Create(entry).Error
	if err == nil {
		return InsertResult{Status: InsertOK}
	}

	if isDuplicateKey(err) {
		return InsertResult{Status: InsertDuplicateKey, Err: err}
	}

	return InsertResult{Status: InsertFailed, Message: storeMessage(err), Err: err}
}

func (wr *waitlistRepository) Count(ctx context.Context) (int64, error) {
	var count int64

	if err := wr.db.WithContext(ctx).Model(&models.WaitlistEntry{}).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	return apperrors.IsDuplicateKeyError(err)
}

// storeMessage prefers the server's message over the driver's decorated
// error string.
func storeMessage(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Message != "" {
		return pgErr.Message
	}

	return err.Error()
}
