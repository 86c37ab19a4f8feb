package httpapi

import (
	"context"

	"firebase.google.com/go/auth"
)

// FirebaseVerifier validates Firebase ID tokens and extracts the custom
// supervisor claims set by the admin tooling.
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier wraps a Firebase auth client.
func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

// Verify checks the ID token signature and maps its claims.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (Claims, error) {
	t, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return Claims{}, err
	}
	claims := Claims{UID: t.UID}
	claims.Supervisor, _ = t.Claims["supervisor"].(bool)
	if locations, ok := t.Claims["locations"].([]interface{}); ok {
		for _, loc := range locations {
			if s, ok := loc.(string); ok {
				claims.Locations = append(claims.Locations, s)
			}
		}
	}
	return claims, nil
}
