package auth

import "context"

// ResourceLookup is the minimal persistence capability the ownership check
// needs: resolve a resource id to the id of its owning user. found is false
// when no resource with that id exists.
type ResourceLookup interface {
	OwnerOf(ctx context.Context, resourceID string) (ownerID string, found bool, err error)
}

// ResourceLookupFunc adapts a function to the ResourceLookup interface.
type ResourceLookupFunc func(ctx context.Context, resourceID string) (string, bool, error)

func (f ResourceLookupFunc) OwnerOf(ctx context.Context, resourceID string) (string, bool, error) {
	return f(ctx, resourceID)
}

// AuthorizeRoles checks role membership. A nil identity means the
// authentication gate never ran (or ran in optional mode and found nothing),
// which is itself a failure: this decision must only follow authentication.
func AuthorizeRoles(ident *Identity, allowed ...Role) error {
	if ident == nil {
		return &AuthzError{Kind: AuthzUnauthenticated, Message: "authentication required"}
	}
	for _, r := range allowed {
		if ident.Role == r {
			return nil
		}
	}
	return &AuthzError{Kind: AuthzRoleDenied, Message: "insufficient role"}
}

// AuthorizeOwner checks that the caller owns the resource. Admins pass
// unconditionally. The lookup is awaited before any decision is made; a
// missing resource is reported as such regardless of the caller's role.
func AuthorizeOwner(ctx context.Context, ident *Identity, lookup ResourceLookup, resourceID string) error {
	if ident == nil {
		return &AuthzError{Kind: AuthzUnauthenticated, Message: "authentication required"}
	}

	ownerID, found, err := lookup.OwnerOf(ctx, resourceID)
	if err != nil {
		return err
	}
	if !found {
		return &AuthzError{Kind: AuthzResourceNotFound, Message: "resource not found"}
	}

	if ident.Role == RoleAdmin {
		return nil
	}
	if ownerID != ident.ID {
		return &AuthzError{Kind: AuthzOwnershipDenied, Message: "not the resource owner"}
	}
	return nil
}
