package security

import "context"

const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Principal is an authenticated identity for the lifetime of one request.
// Only Admin and Creator implement it.
type Principal interface {
	Kind() Kind
	principal()
}

type Admin struct {
	ID    string
	Email string
	Role  string
}

func (Admin) Kind() Kind { return KindAdmin }
func (Admin) principal() {}

type Creator struct {
	ID string
}

func (Creator) Kind() Kind { return KindCreator }
func (Creator) principal() {}

// PrincipalFromClaims builds the typed principal verified claims describe.
func PrincipalFromClaims(c *Claims) (Principal, error) {
	switch c.Kind {
	case KindAdmin:
		return Admin{ID: c.Subject, Email: c.Email, Role: c.Role}, nil
	case KindCreator:
		return Creator{ID: c.Subject}, nil
	default:
		return nil, ErrMalformedToken
	}
}

type contextKey string

const principalCtxKey contextKey = "principal"

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey).(Principal)
	return p, ok
}

func CreatorFromContext(ctx context.Context) (Creator, bool) {
	p, _ := PrincipalFromContext(ctx)
	c, ok := p.(Creator)
	return c, ok
}

func AdminFromContext(ctx context.Context) (Admin, bool) {
	p, _ := PrincipalFromContext(ctx)
	a, ok := p.(Admin)
	return a, ok
}
