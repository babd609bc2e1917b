package service

import (
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/metrics"
	"alcyxob/gymhub/internal/repository"
	"alcyxob/gymhub/internal/store"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrForbidden       = errors.New("operation not permitted for this user")
	ErrSessionActive   = errors.New("a workout session is already active")
	ErrNoActiveSession = errors.New("no active workout session")
	ErrInvalidUpdate   = errors.New("invalid workout session update")
	ErrConflict        = errors.New("data changed concurrently, reload and retry")
)

// GymService owns the collection repository and hands out per-identity
// workspaces. Every mutation across all workspaces is serialized on one
// lock so a write and the refresh that follows it are never interleaved
// with another writer.
type GymService struct {
	repo     *repository.Repository
	log      *zap.Logger
	metrics  *metrics.Recorder
	now      func() time.Time
	validate *validator.Validate

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*GymService)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *GymService) { s.now = now }
}

// WithRand replaces the source used for generated member and trainer codes.
func WithRand(r *rand.Rand) Option {
	return func(s *GymService) { s.rng = r }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(s *GymService) { s.metrics = m }
}

// NewGymService creates the service. A nil logger is replaced by a no-op one.
func NewGymService(repo *repository.Repository, log *zap.Logger, opts ...Option) *GymService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &GymService{
		repo:     repo,
		log:      log,
		now:      time.Now,
		validate: validator.New(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Workspace is the data layer as seen by one signed-in user. It is created at
// session start, refreshed whenever identity changes, and dropped at logout.
type Workspace struct {
	svc *GymService

	mu        sync.RWMutex
	identity  *domain.Identity
	resolving bool
	snapshot  *Snapshot
}

// NewWorkspace returns a workspace with no identity and an empty snapshot.
func (s *GymService) NewWorkspace() *Workspace {
	return &Workspace{svc: s, snapshot: emptySnapshot()}
}

// Open creates a workspace for id and builds its first snapshot.
func (s *GymService) Open(ctx context.Context, id domain.Identity) (*Workspace, error) {
	w := s.NewWorkspace()
	if err := w.SetIdentity(ctx, &id, false); err != nil {
		return nil, err
	}
	return w, nil
}

// SetIdentity records the caller and re-runs the refresh pipeline. While
// resolving is true the published snapshot is left untouched.
func (w *Workspace) SetIdentity(ctx context.Context, id *domain.Identity, resolving bool) error {
	w.mu.Lock()
	if id != nil {
		cp := *id
		w.identity = &cp
	} else {
		w.identity = nil
	}
	w.resolving = resolving
	w.mu.Unlock()
	return w.Refresh(ctx)
}

// Identity returns the caller and whether the workspace is ready for writes.
func (w *Workspace) Identity() (domain.Identity, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.resolving || w.identity == nil || w.identity.UserID == "" || w.identity.GymID == "" {
		return domain.Identity{}, false
	}
	return *w.identity, true
}

// Snapshot returns the last published snapshot. Published snapshots are never modified.
func (w *Workspace) Snapshot() *Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshot
}

func (w *Workspace) publish(s *Snapshot) {
	w.mu.Lock()
	w.snapshot = s
	w.mu.Unlock()
}

// mutate runs fn under the service write lock, then republishes the
// snapshot. Without an identity or tenant it is a silent no-op.
func (w *Workspace) mutate(ctx context.Context, op string, fn func(id domain.Identity) error) error {
	id, ok := w.Identity()
	if !ok {
		w.svc.log.Debug("Mutation skipped, no identity", zap.String("operation", op))
		return nil
	}

	w.svc.mu.Lock()
	defer w.svc.mu.Unlock()

	if err := fn(id); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			w.svc.metrics.Conflict()
			w.svc.log.Warn("Write lost to a concurrent writer",
				zap.String("operation", op), zap.String("gym_id", id.GymID))
			return fmt.Errorf("%s: %w", op, ErrConflict)
		}
		return err
	}
	w.svc.metrics.Mutation(op)
	return w.rebuild(ctx)
}

func (s *GymService) invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
