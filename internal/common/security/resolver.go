package security

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"showcase/internal/common"

	"github.com/go-chi/jwtauth/v5"
)

const (
	AdminCookieName   = "admin_token"
	CreatorCookieName = "creator_token"
)

// ErrNoToken means no extraction strategy found a token on the request.
var ErrNoToken = errors.New("no session token")

// TokenExtractor pulls a raw token out of a request, returning "" when absent.
type TokenExtractor func(r *http.Request) string

// FromBearerHeader reads "Authorization: Bearer <token>".
func FromBearerHeader(r *http.Request) string {
	return jwtauth.TokenFromHeader(r)
}

// FromCookie reads the named cookie.
func FromCookie(name string) TokenExtractor {
	return func(r *http.Request) string {
		c, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		return c.Value
	}
}

// CookieName is the session cookie used for principals of kind k.
func CookieName(k Kind) string {
	if k == KindAdmin {
		return AdminCookieName
	}
	return CreatorCookieName
}

// Resolver turns a request into a Principal of one required kind. Extractors
// are tried in order and the first non-empty token wins.
type Resolver struct {
	tokens     *TokenService
	kind       Kind
	roles      []string
	extractors []TokenExtractor
}

// NewResolver builds a resolver for kind. Without explicit extractors it uses
// the bearer header followed by the kind's cookie.
func NewResolver(tokens *TokenService, kind Kind, extractors ...TokenExtractor) *Resolver {
	if len(extractors) == 0 {
		extractors = []TokenExtractor{FromBearerHeader, FromCookie(CookieName(kind))}
	}
	return &Resolver{tokens: tokens, kind: kind, extractors: extractors}
}

// WithRoles returns a copy that additionally requires an admin role in roles.
func (res *Resolver) WithRoles(roles ...string) *Resolver {
	cp := *res
	cp.roles = roles
	return &cp
}

func (res *Resolver) Kind() Kind { return res.kind }

// Resolve authenticates r. Missing or unverifiable tokens yield an error
// wrapping common.ErrUnauthorized; a valid token of the wrong kind or role
// yields one wrapping common.ErrForbidden.
func (res *Resolver) Resolve(r *http.Request) (Principal, error) {
	var raw string
	for _, extract := range res.extractors {
		if raw = extract(r); raw != "" {
			break
		}
	}
	if raw == "" {
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthorized, ErrNoToken)
	}

	claims, err := res.tokens.Verify(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthorized, err)
	}

	p, err := PrincipalFromClaims(claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthorized, err)
	}

	if p.Kind() != res.kind {
		return nil, fmt.Errorf("%s session required: %w", res.kind, common.ErrForbidden)
	}
	if admin, ok := p.(Admin); ok && len(res.roles) > 0 && !slices.Contains(res.roles, admin.Role) {
		return nil, fmt.Errorf("role %q not permitted: %w", admin.Role, common.ErrForbidden)
	}
	return p, nil
}
