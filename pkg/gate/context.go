package gate

import (
	"context"

	"github.com/academyos/academyos/pkg/repository"
)

type contextKey string

const (
	identityKey   contextKey = "gate_identity"
	resolutionKey contextKey = "gate_resolution"
)

func withIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func withResolution(ctx context.Context, res *Resolution) context.Context {
	return context.WithValue(ctx, resolutionKey, res)
}

// IdentityFrom extracts the verified identity placed by the gate.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*Identity)
	return identity, ok
}

// ResolutionFrom extracts the profile resolution placed by the gate.
func ResolutionFrom(ctx context.Context) (*Resolution, bool) {
	res, ok := ctx.Value(resolutionKey).(*Resolution)
	return res, ok
}

// ActiveProfileFrom extracts the active profile placed by the gate, if one
// was resolved.
func ActiveProfileFrom(ctx context.Context) (*repository.ProfileWithOrganization, bool) {
	res, ok := ResolutionFrom(ctx)
	if !ok || res.Profile == nil {
		return nil, false
	}
	return res.Profile, true
}
