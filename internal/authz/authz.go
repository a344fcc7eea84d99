// Package authz holds the request-scoped identity and the single
// ownership predicate shared by every mutating resource endpoint.
package authz

import "backend/internal/models"

// Identity is the authenticated caller, attached to a request by the
// auth middleware and discarded when the request completes.
type Identity struct {
	UserID int64
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// AuthorizeOwner reports whether the identity may mutate a resource
// owned by ownerID. Admins may mutate anything.
func AuthorizeOwner(ownerID int64, identity Identity) bool {
	return ownerID == identity.UserID || identity.IsAdmin()
}
