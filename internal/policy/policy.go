// Package policy centralizes the single authorization rule the API has:
// a resource may be touched by its owner or by an admin.
package policy

import (
	"github.com/mjaworski/window-offers/internal/apperrors"
	"github.com/mjaworski/window-offers/internal/models"
)

// Ownable is implemented by models that belong to a single user.
type Ownable interface {
	GetUserID() uint
}

// CanAccess reports whether user may act on resource. Admins may act on
// anything; everyone else only on resources they own. Resources that do
// not expose an owner are denied by default.
func CanAccess(user *models.User, resource any) bool {
	if user == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return ownable.GetUserID() == user.ID
}

// Authorize is CanAccess as an error: nil when allowed, PermissionDenied
// otherwise. Checked before any write so denials never leave partial state.
func Authorize(user *models.User, resource any) error {
	if !CanAccess(user, resource) {
		return apperrors.PermissionDenied("not_enough_permissions")
	}
	return nil
}
