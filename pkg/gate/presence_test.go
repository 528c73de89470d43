package gate

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/academyos/academyos/pkg/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPresenceRecord(t *testing.T) {
	store := &fakeProfileStore{}
	recorder := NewPresenceRecorder(store, discardLogger(), time.Second)

	userID := uuid.New()
	profile := makeProfile(userID, domain.RoleOwner, "acme", time.Now())
	recorder.Record(profile)
	recorder.Wait()

	if store.touchCount() != 1 {
		t.Fatalf("touch count = %d, want 1", store.touchCount())
	}
	got := store.touches[0]
	if got.userID != userID {
		t.Errorf("touched user = %s, want %s", got.userID, userID)
	}
	if got.orgID != profile.Profile.OrganizationID {
		t.Errorf("touched org = %s, want %s", got.orgID, profile.Profile.OrganizationID)
	}
}

func TestPresenceRecord_FailureIsSwallowed(t *testing.T) {
	store := &fakeProfileStore{touchErr: errors.New("write timeout")}
	recorder := NewPresenceRecorder(store, discardLogger(), time.Second)

	// A failing write must not panic or block; it is only logged.
	recorder.Record(makeProfile(uuid.New(), domain.RoleStudent, "acme", time.Now()))
	recorder.Wait()

	if store.touchCount() != 1 {
		t.Fatalf("touch count = %d, want 1", store.touchCount())
	}
}

func TestPresenceRecord_MultipleInFlight(t *testing.T) {
	store := &fakeProfileStore{}
	recorder := NewPresenceRecorder(store, discardLogger(), time.Second)

	for i := 0; i < 10; i++ {
		recorder.Record(makeProfile(uuid.New(), domain.RoleAdmin, "acme", time.Now()))
	}
	recorder.Wait()

	if store.touchCount() != 10 {
		t.Fatalf("touch count = %d, want 10", store.touchCount())
	}
}
