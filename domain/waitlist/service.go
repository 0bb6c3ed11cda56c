package waitlist

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akeren/launchwait/internal/log"
	"github.com/akeren/launchwait/internal/models"
	"github.com/akeren/launchwait/pkg/constants"
	"github.com/akeren/launchwait/pkg/emailaddr"
	apperrors "github.com/akeren/launchwait/pkg/errors"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	tracerName = "github.com/akeren/launchwait/domain/waitlist"

	notifyTimeout = 5 * time.Second
)

type WaitlistService interface {
	// Register validates req and inserts exactly one entry. The returned error
	// is a validation, conflict or store AppError.
	Register(ctx context.Context, req *RegisterRequest) error

	// Count returns the number of registered entries, served from cache when possible.
	Count(ctx context.Context) (int64, error)

	// Wait blocks until every acknowledgment email started by Register has
	// finished or timed out.
	Wait()
}

type waitlistService struct {
	logger     *log.Logger
	repository WaitlistRepository
	notifier   Notifier
	countCache CountCache
	validate   *validator.Validate
	now        func() time.Time

	// inserts bumps on every stored entry so Count can tell its database
	// read raced a registration.
	inserts atomic.Uint64
	pending sync.WaitGroup
}

func NewWaitlistService(logger *log.Logger, repository WaitlistRepository, notifier Notifier, countCache CountCache) WaitlistService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if countCache == nil {
		countCache = noopCountCache{}
	}

	return &waitlistService{
		logger:     logger,
		repository: repository,
		notifier:   notifier,
		countCache: countCache,
		validate:   newValidator(),
		now:        time.Now,
	}
}

func (s *waitlistService) Register(ctx context.Context, req *RegisterRequest) error {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "waitlist.Register")
	defer span.End()

	if req == nil {
		logger.Warn("Register received empty request")
		return apperrors.NewValidationError(constants.MessageInvalidEmail, nil)
	}

	req.sanitize()

	if err := s.validate.Struct(req); err != nil {
		message := invalidFieldMessage(apperrors.FirstInvalidField(err, req))
		logger.Warn("Waitlist registration rejected", "reason", message, "email_domain", emailaddr.Domain(req.Email))
		span.SetStatus(codes.Error, message)
		return apperrors.NewValidationError(message, err)
	}

	entry := ToWaitlistEntryModel(req, s.now())
	span.SetAttributes(
		attribute.String("waitlist.email_domain", emailaddr.Domain(entry.Email)),
		attribute.String("waitlist.interest", entry.Interest),
	)

	result := s.repository.Insert(ctx, entry)
	span.SetAttributes(attribute.String("waitlist.insert_status", result.Status.String()))

	switch result.Status {
	case InsertOK:
	case InsertDuplicateKey:
		logger.Info("Waitlist registration for existing email", "email_domain", emailaddr.Domain(entry.Email))
		return apperrors.NewConflictError(constants.MessageEmailRegistered, result.Err)
	default:
		logger.Error("Failed to insert waitlist entry", "error", result.Err, "message", result.Message)
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Message)
		return apperrors.NewStoreError(result.Message, result.Err)
	}

	logger.Info("Waitlist entry registered", "email_domain", emailaddr.Domain(entry.Email), "interest", entry.Interest)

	s.inserts.Add(1)
	s.countCache.Invalidate(ctx)
	s.acknowledge(ctx, logger, entry)

	return nil
}

func (s *waitlistService) Count(ctx context.Context) (int64, error) {
	if count, ok := s.countCache.Get(ctx); ok {
		return count, nil
	}

	seen := s.inserts.Load()
	count, err := s.repository.Count(ctx)
	if err != nil {
		log.GetLoggerInstanceFromContext(ctx, s.logger).Error("Failed to count waitlist entries", "error", err)
		return 0, apperrors.NewStoreError("Unable to count waitlist entries", err)
	}

	// A registration that landed during the read may already have
	// invalidated the cache; caching this count would undo that. Other
	// instances can still race, so the cached count is eventually consistent
	// within the TTL.
	if s.inserts.Load() == seen {
		s.countCache.Set(ctx, count)
	}
	return count, nil
}

func (s *waitlistService) Wait() {
	s.pending.Wait()
}

// acknowledge sends the confirmation email in the background. Its outcome
// never changes the registration result, and the request does not wait on it.
func (s *waitlistService) acknowledge(ctx context.Context, logger *log.Logger, entry *models.WaitlistEntry) {
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()

		if err := s.notifier.Acknowledge(notifyCtx, entry); err != nil {
			logger.Warn("Waitlist acknowledgment email failed", "error", err, "email_domain", emailaddr.Domain(entry.Email))
		}
	}()
}

func invalidFieldMessage(field string) string {
	switch field {
	case "":
		return constants.MessageInvalidRequestBody
	case "email":
		return constants.MessageInvalidEmail
	default:
		return "Invalid " + field
	}
}
