package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"erp-backend/internal/audit"
	"erp-backend/internal/models"

	"go.uber.org/zap"
)

// PhotoStore holds uploaded photos. Rows may only reference names it has,
// and superseded names are deleted from it.
type PhotoStore interface {
	Exists(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) error
}

type Auditor interface {
	WriteLog(ctx context.Context, opts audit.LogOptions) error
}

// Recorder receives movement counters. Implementations must be safe for concurrent use.
type Recorder interface {
	MovementRecorded(t models.LedgerType, quantity int)
	MovementRejected(operation, reason string)
}

type Service struct {
	repo     Repository
	photos   PhotoStore
	auditor  Auditor
	recorder Recorder
	log      *zap.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithPhotoStore(p PhotoStore) Option { return func(s *Service) { s.photos = p } }
func WithAuditor(a Auditor) Option       { return func(s *Service) { s.auditor = a } }
func WithRecorder(r Recorder) Option     { return func(s *Service) { s.recorder = r } }
func WithLogger(l *zap.Logger) Option    { return func(s *Service) { s.log = l } }
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		log:  zap.NewNop(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Actor is the user on whose behalf a write runs.
type Actor struct {
	ID   string
	Name string
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey{}).(Actor)
	return a
}

// writeAudit runs after commit. A failed audit write never undoes a movement.
func (s *Service) writeAudit(ctx context.Context, entityType, entityID string, action models.AuditAction, desc string, after any) {
	if s.auditor == nil {
		return
	}
	actor := ActorFrom(ctx)
	err := s.auditor.WriteLog(ctx, audit.LogOptions{
		UserID:      actor.ID,
		UserName:    actor.Name,
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Description: desc,
		After:       after,
	})
	if err != nil {
		s.log.Warn("audit log write failed",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}

func (s *Service) recordMovements(entries []models.StockLedgerEntry) {
	if s.recorder == nil {
		return
	}
	for _, e := range entries {
		s.recorder.MovementRecorded(e.Type, e.Quantity)
	}
}

// rejected logs and counts domain refusals and passes err through.
func (s *Service) rejected(operation string, err error) error {
	if err == nil {
		return nil
	}
	var reason string
	switch {
	case errors.Is(err, ErrInsufficientStock):
		reason = "insufficient_stock"
	case errors.Is(err, ErrInvalidState):
		reason = "invalid_state"
	case errors.Is(err, ErrNotFound):
		reason = "not_found"
	case errors.Is(err, ErrValidation):
		reason = "validation"
	default:
		return err
	}
	s.log.Warn("movement rejected",
		zap.String("operation", operation),
		zap.String("reason", reason),
		zap.Error(err))
	if s.recorder != nil {
		s.recorder.MovementRejected(operation, reason)
	}
	return err
}

// checkPhoto accepts the empty name, which means no photo.
func (s *Service) checkPhoto(ctx context.Context, name string) error {
	if name == "" || s.photos == nil {
		return nil
	}
	ok, err := s.photos.Exists(ctx, name)
	if err != nil {
		return fmt.Errorf("check photo: %w", err)
	}
	if !ok {
		return invalidField("photo", "was not uploaded")
	}
	return nil
}

func (s *Service) dropPhoto(ctx context.Context, previous, current string) {
	if s.photos == nil || previous == "" || previous == current {
		return
	}
	if err := s.photos.Delete(ctx, previous); err != nil {
		s.log.Warn("superseded photo not deleted", zap.String("photo", previous), zap.Error(err))
	}
}
