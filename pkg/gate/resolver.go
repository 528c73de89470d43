package gate

import (
	"context"

	"github.com/google/uuid"

	"github.com/academyos/academyos/pkg/repository"
)

// ProfileStore is the slice of the data layer the gate needs.
// *repository.ProfilesRepository satisfies it.
type ProfileStore interface {
	GetActiveProfilesWithOrganizations(ctx context.Context, userID uuid.UUID) ([]*repository.ProfileWithOrganization, error)
	TouchLastSeen(ctx context.Context, userID, orgID uuid.UUID) error
}

// Resolution is the outcome of profile resolution for one request.
type Resolution struct {
	// Profile is the active profile, nil when the identity has none.
	Profile *repository.ProfileWithOrganization
	// HasMultiple is true when the identity holds more than one profile.
	HasMultiple bool
	// PreferenceApplied is true when Profile was selected by a validated
	// academy preference rather than the creation-order fallback.
	PreferenceApplied bool
}

// ProfileResolver selects the active profile for an identity.
type ProfileResolver struct {
	store ProfileStore
}

// NewProfileResolver creates a new profile resolver.
func NewProfileResolver(store ProfileStore) *ProfileResolver {
	return &ProfileResolver{store: store}
}

// Resolve loads the identity's live profiles and picks exactly one as
// active. preferredOrg is the client-supplied academy hint (uuid.Nil when
// absent); it is validated against the loaded set and ignored when stale.
// The fallback is the first profile by creation order, so repeated calls
// with the same inputs always pick the same profile. Profiles whose
// organization no longer exists are filtered by the store's join and never
// considered.
func (r *ProfileResolver) Resolve(ctx context.Context, userID, preferredOrg uuid.UUID) (*Resolution, error) {
	profiles, err := r.store.GetActiveProfilesWithOrganizations(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return &Resolution{}, nil
	}

	res := &Resolution{HasMultiple: len(profiles) > 1}

	if preferredOrg != uuid.Nil {
		for _, p := range profiles {
			if p.Profile.OrganizationID == preferredOrg {
				res.Profile = p
				res.PreferenceApplied = true
				return res, nil
			}
		}
	}

	// Preference absent or no longer backed by a membership: deterministic
	// fallback to the first profile by creation order.
	res.Profile = profiles[0]
	return res, nil
}
