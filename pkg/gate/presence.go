package gate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/academyos/academyos/pkg/repository"
)

// DefaultPresenceTimeout bounds how long a detached presence write may run.
const DefaultPresenceTimeout = 3 * time.Second

// PresenceRecorder stamps the active profile's last-seen time. Writes are
// fire-and-forget: they run on a detached context so an aborted request does
// not cancel them, they are bounded by a timeout, and failures are logged
// but never surface to the request.
type PresenceRecorder struct {
	store   ProfileStore
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewPresenceRecorder creates a new presence recorder. A zero timeout means
// DefaultPresenceTimeout.
func NewPresenceRecorder(store ProfileStore, logger *slog.Logger, timeout time.Duration) *PresenceRecorder {
	if timeout == 0 {
		timeout = DefaultPresenceTimeout
	}
	return &PresenceRecorder{
		store:   store,
		logger:  logger,
		timeout: timeout,
	}
}

// Record stamps the profile's last-seen time asynchronously. The write is
// scoped by (user, organization); concurrent requests from the same profile
// race and the last writer wins, which is fine for an activity timestamp.
func (p *PresenceRecorder) Record(profile *repository.ProfileWithOrganization) {
	userID := profile.Profile.UserID
	orgID := profile.Profile.OrganizationID

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		if err := p.store.TouchLastSeen(ctx, userID, orgID); err != nil {
			p.logger.Warn("presence update failed",
				"error", err,
				"user_id", userID,
				"organization_id", orgID,
			)
		}
	}()
}

// Wait blocks until all in-flight presence writes finish. Used on shutdown.
func (p *PresenceRecorder) Wait() {
	p.wg.Wait()
}
