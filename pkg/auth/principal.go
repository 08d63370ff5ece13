package auth

import "context"

// Principal is the signed-in parent as seen by request handling. Consent and
// child age are a snapshot from when the access token was issued; the
// stored profile stays authoritative for consent.
type Principal struct {
	UserID           string
	RecordingConsent bool
	ChildAge         int
}

type principalKey struct{}

// WithPrincipal returns ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored by WithPrincipal.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
