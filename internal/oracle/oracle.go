// Package oracle defines the authorization capability the ledger consumes.
// Who is a doctor and who is a pharmacy is owned by an external identity
// registry; the core only ever asks yes/no role questions plus a display name,
// and it re-asks on every call rather than caching a grant that may have been
// revoked in the meantime.
package oracle

import "context"

// Role identifies which registry a role-membership question is asked against.
type Role string

const (
	// RoleIssuer is held by parties allowed to register prescriptions (doctors).
	RoleIssuer Role = "issuer"
	// RoleDispenser is held by parties allowed to fulfill them (pharmacies).
	RoleDispenser Role = "dispenser"
)

// Oracle answers role-membership questions for an identity.
type Oracle interface {
	// IsAuthorized reports whether identity currently holds role.
	IsAuthorized(ctx context.Context, identity string, role Role) (bool, error)

	// DisplayName returns the registered display name for identity under role,
	// or the empty string if the identity is not authorized.
	DisplayName(ctx context.Context, identity string, role Role) (string, error)
}
