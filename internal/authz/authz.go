// Package authz decides whether a set of token claims may perform an operation.
// It performs no I/O.
package authz

import (
	"context"

	"github.com/angelmondragon/catalog-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

// Op names a guarded operation.
type Op string

const (
	OpRegister Op = "user.register"
	OpLogin    Op = "user.login"
	OpRefresh  Op = "token.refresh"
	OpLogout   Op = "token.logout"
	OpUserGet  Op = "user.get"
	OpUserDel  Op = "user.delete"

	OpStoreCreate Op = "store.create"
	OpStoreGet    Op = "store.get"
	OpStoreList   Op = "store.list"
	OpStoreDelete Op = "store.delete"

	OpTagCreate Op = "tag.create"
	OpTagGet    Op = "tag.get"
	OpTagList   Op = "tag.list"
	OpTagDelete Op = "tag.delete"
	OpTagLink   Op = "tag.link"
	OpTagUnlink Op = "tag.unlink"

	OpItemCreate Op = "item.create"
	OpItemGet    Op = "item.get"
	OpItemList   Op = "item.list"
	OpItemUpsert Op = "item.upsert"
	OpItemDelete Op = "item.delete"
)

// Requirement describes what an operation demands of the caller.
type Requirement struct {
	Authenticated bool
	Admin         bool
	Fresh         bool
	// Token is the token type the caller must present; empty means access.
	Token auth.TokenType
}

var (
	public   = Requirement{}
	signedIn = Requirement{Authenticated: true}
	fresh    = Requirement{Authenticated: true, Fresh: true}
	admin    = Requirement{Authenticated: true, Admin: true}
	refresh  = Requirement{Authenticated: true, Token: auth.TokenTypeRefresh}
)

// Policy maps operations to requirements. Operations missing from a policy require authentication.
type Policy map[Op]Requirement

// DefaultPolicy leaves store and tag management open while guarding items and accounts.
func DefaultPolicy() Policy {
	return Policy{
		OpRegister: public,
		OpLogin:    public,
		OpRefresh:  refresh,
		OpLogout:   signedIn,
		OpUserGet:  signedIn,
		OpUserDel:  admin,

		OpStoreCreate: public,
		OpStoreGet:    public,
		OpStoreList:   public,
		OpStoreDelete: public,

		OpTagCreate: public,
		OpTagGet:    public,
		OpTagList:   public,
		OpTagDelete: public,
		OpTagLink:   public,
		OpTagUnlink: public,

		OpItemCreate: fresh,
		OpItemGet:    signedIn,
		OpItemList:   signedIn,
		OpItemUpsert: signedIn,
		OpItemDelete: admin,
	}
}

// StrictPolicy requires a token for every store and tag operation and admin rights to delete them.
func StrictPolicy() Policy {
	p := DefaultPolicy()
	for _, op := range []Op{OpStoreCreate, OpStoreGet, OpStoreList, OpTagCreate, OpTagGet, OpTagList, OpTagLink, OpTagUnlink} {
		p[op] = signedIn
	}
	p[OpStoreDelete] = admin
	p[OpTagDelete] = admin
	return p
}

// PolicyFor picks the strict or default policy.
func PolicyFor(strict bool) Policy {
	if strict {
		return StrictPolicy()
	}
	return DefaultPolicy()
}

// Requirement returns the requirement registered for op.
func (p Policy) Requirement(op Op) Requirement {
	if req, ok := p[op]; ok {
		return req
	}
	return signedIn
}

// Authorize checks claims against the requirement for op.
func (p Policy) Authorize(claims *auth.Claims, op Op) error {
	return Check(claims, p.Requirement(op))
}

// Check applies a requirement to claims. Checks run in a fixed order: authentication,
// token type, admin, freshness.
func Check(claims *auth.Claims, req Requirement) error {
	if !req.Authenticated {
		return nil
	}
	if claims == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "Request does not contain an access token.")
	}

	want := req.Token
	if want == "" {
		want = auth.TokenTypeAccess
	}
	if claims.Type != want {
		return pkgerrors.New(pkgerrors.CodeTokenInvalid, "Only "+string(want)+" tokens are allowed.")
	}

	if req.Admin && !claims.IsAdmin {
		return pkgerrors.New(pkgerrors.CodeAdminRequired, "Admin privilege required.")
	}
	if req.Fresh {
		return RequireFresh(claims)
	}
	return nil
}

// RequireFresh rejects tokens obtained through refresh rather than a password login.
func RequireFresh(claims *auth.Claims) error {
	if claims == nil || !claims.Fresh {
		return pkgerrors.New(pkgerrors.CodeFreshTokenRequired, "The token is not fresh.")
	}
	return nil
}

// Explain replaces an authentication-required error with the reason the caller's
// bearer token was refused, when one was recorded on ctx. Other errors pass through.
func Explain(ctx context.Context, err error) error {
	if err == nil || !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		return err
	}
	if rejected := auth.RejectionFromContext(ctx); rejected != nil {
		return rejected
	}
	return err
}
