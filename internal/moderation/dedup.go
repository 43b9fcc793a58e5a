package moderation

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// NotificationKind names the membership notification being de-duplicated.
type NotificationKind string

const (
	NotifyWelcome NotificationKind = "welcome"
	NotifyGoodbye NotificationKind = "goodbye"
)

// DedupKey identifies one notification for one user in one chat.
type DedupKey struct {
	Kind   NotificationKind
	UserID int64
	ChatID int64
}

func (k DedupKey) String() string {
	return fmt.Sprintf("%s_%d_%d", k.Kind, k.UserID, k.ChatID)
}

// DuplicateSuppressor remembers recently sent notifications. Each key expires
// through a one-time job on its own scheduler, so shutting the suppressor down
// cancels every pending expiry. gocron keeps one-time jobs after they run, so
// each expiry job removes itself once done.
type DuplicateSuppressor struct {
	mu     sync.Mutex
	active map[DedupKey]struct{}
	window time.Duration
	clock  clockwork.Clock
	sched  gocron.Scheduler
	logger *slog.Logger
}

// NewDuplicateSuppressor creates and starts a suppressor with the given window.
func NewDuplicateSuppressor(logger *slog.Logger, clock clockwork.Clock, window time.Duration) (*DuplicateSuppressor, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	sched, err := gocron.NewScheduler(gocron.WithClock(clock))
	if err != nil {
		return nil, fmt.Errorf("failed to create dedup scheduler: %w", err)
	}
	sched.Start()

	return &DuplicateSuppressor{
		active: make(map[DedupKey]struct{}),
		window: window,
		clock:  clock,
		sched:  sched,
		logger: logger.With("component", "dedup"),
	}, nil
}

// ShouldNotify returns true the first time a key is seen inside the window and
// false for every repeat until the key expires.
func (s *DuplicateSuppressor) ShouldNotify(kind NotificationKind, userID, chatID int64) bool {
	key := DedupKey{Kind: kind, UserID: userID, ChatID: chatID}

	s.mu.Lock()
	if _, ok := s.active[key]; ok {
		s.mu.Unlock()
		s.logger.Debug("Suppressed duplicate notification", "key", key.String())
		return false
	}
	s.active[key] = struct{}{}
	s.mu.Unlock()

	s.scheduleExpiry(key)
	return true
}

func (s *DuplicateSuppressor) scheduleExpiry(key DedupKey) {
	_, err := s.sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(s.clock.Now().Add(s.window))),
		gocron.NewTask(s.forget, key),
		gocron.WithName("dedup_expiry:"+key.String()),
		gocron.WithEventListeners(gocron.AfterJobRuns(s.removeJob)),
	)
	if err != nil {
		// Without an expiry the key would suppress forever.
		s.logger.Warn("Failed to schedule dedup expiry, dropping key", "key", key.String(), "error", err)
		s.forget(key)
	}
}

func (s *DuplicateSuppressor) forget(key DedupKey) {
	s.mu.Lock()
	delete(s.active, key)
	s.mu.Unlock()
}

func (s *DuplicateSuppressor) removeJob(id uuid.UUID, name string) {
	if err := s.sched.RemoveJob(id); err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
		s.logger.Warn("Failed to remove dedup expiry job", "job", name, "error", err)
	}
}

// ScheduledExpiries returns the number of expiry jobs held by the scheduler.
func (s *DuplicateSuppressor) ScheduledExpiries() int {
	return len(s.sched.Jobs())
}

// Pending reports whether a key is currently suppressing notifications.
func (s *DuplicateSuppressor) Pending(kind NotificationKind, userID, chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[DedupKey{Kind: kind, UserID: userID, ChatID: chatID}]
	return ok
}

// Close cancels all pending expiries. Suppression state is volatile, so
// nothing else needs to be flushed.
func (s *DuplicateSuppressor) Close() error {
	if err := s.sched.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop dedup scheduler: %w", err)
	}
	return nil
}
