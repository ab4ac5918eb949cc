// Package auth adapts external identity providers to the auth middleware.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/learnhub/auditkeeper/internal/models"
)

// OIDCVerifier validates bearer ID tokens issued by an OpenID Connect provider.
type OIDCVerifier struct {
	verifier   *oidc.IDTokenVerifier
	roleClaim  string
	emailClaim string
}

// OIDCOptions configures NewOIDCVerifier.
type OIDCOptions struct {
	IssuerURL  string
	ClientID   string
	RoleClaim  string
	EmailClaim string
}

// NewOIDCVerifier discovers the issuer and returns a verifier for its tokens.
func NewOIDCVerifier(ctx context.Context, opts OIDCOptions) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, opts.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("discovering OIDC provider: %w", err)
	}

	return newOIDCVerifier(provider.Verifier(&oidc.Config{ClientID: opts.ClientID}), opts), nil
}

func newOIDCVerifier(v *oidc.IDTokenVerifier, opts OIDCOptions) *OIDCVerifier {
	return &OIDCVerifier{verifier: v, roleClaim: opts.RoleClaim, emailClaim: opts.EmailClaim}
}

// VerifyToken checks the token signature, audience and expiry and maps its
// claims to an identity. Any verification failure is reported as
// models.ErrUnauthenticated.
func (v *OIDCVerifier) VerifyToken(ctx context.Context, token string) (*models.Identity, error) {
	idToken, err := v.verifier.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthenticated, err)
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: decoding claims: %v", models.ErrUnauthenticated, err)
	}

	return identityFromClaims(idToken.Subject, claims, v.roleClaim, v.emailClaim)
}

// identityFromClaims builds an identity from decoded token claims. roleClaim
// may be a dotted path into nested objects; when it names a list the most
// privileged known role wins. A token without a known role still
// authenticates, with an empty role that every role check refuses.
func identityFromClaims(subject string, claims map[string]any, roleClaim, emailClaim string) (*models.Identity, error) {
	if subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", models.ErrUnauthenticated)
	}

	role, _ := pickRole(lookupClaim(claims, roleClaim))

	email, _ := lookupClaim(claims, emailClaim).(string)

	return &models.Identity{Subject: subject, Email: email, Role: role}, nil
}

func lookupClaim(claims map[string]any, path string) any {
	var cur any = claims
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}

	return cur
}

// roleRank orders roles from least to most privileged.
var roleRank = map[models.Role]int{
	models.RoleStudent:    1,
	models.RoleTeacher:    2,
	models.RoleAdmin:      3,
	models.RoleSuperadmin: 4,
}

func pickRole(v any) (models.Role, bool) {
	var candidates []string
	switch t := v.(type) {
	case string:
		candidates = []string{t}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				candidates = append(candidates, s)
			}
		}
	}

	var best models.Role
	for _, c := range candidates {
		r := models.Role(strings.ToLower(strings.TrimSpace(c)))
		if roleRank[r] > roleRank[best] {
			best = r
		}
	}

	return best, best != ""
}
