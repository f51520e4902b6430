// Package auth holds the single authorization decision table used by every
// catalog and order operation.
package auth

import (
	"fmt"

	"commerce-service/models"
)

type Action int

const (
	ActionReadProduct Action = iota
	ActionListProducts
	ActionCreateProduct
	ActionDeleteProduct
	ActionReadOrder
	ActionCreateOrder
	ActionUpdateOrderStatus
	ActionReadProfile
)

var actionNames = map[Action]string{
	ActionReadProduct:       "read_product",
	ActionListProducts:      "list_products",
	ActionCreateProduct:     "create_product",
	ActionDeleteProduct:     "delete_product",
	ActionReadOrder:         "read_order",
	ActionCreateOrder:       "create_order",
	ActionUpdateOrderStatus: "update_order_status",
	ActionReadProfile:       "read_profile",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

func (a Action) public() bool {
	return a == ActionReadProduct || a == ActionListProducts
}

func (a Action) adminOnly() bool {
	return a == ActionCreateProduct || a == ActionDeleteProduct || a == ActionUpdateOrderStatus
}

// Resource identifies the owner of the target resource. A zero value means
// the action has no owned resource.
type Resource struct {
	OwnerID int64
}

func Owned(ownerID int64) Resource {
	return Resource{OwnerID: ownerID}
}

// Authorize returns nil to allow, or an error wrapping ErrUnauthenticated or
// ErrForbidden. Ownership is compared by user id only.
func Authorize(id *models.Identity, action Action, res Resource) error {
	if action.public() {
		return nil
	}
	if id == nil {
		return fmt.Errorf("%s: %w", action, models.ErrUnauthenticated)
	}
	if action.adminOnly() {
		if !id.HasRole(models.RoleAdmin) {
			return fmt.Errorf("%s requires admin: %w", action, models.ErrForbidden)
		}
		return nil
	}

	switch action {
	case ActionCreateOrder:
		if id.HasRole(models.RoleClient) && res.OwnerID == id.UserID {
			return nil
		}
		return fmt.Errorf("%s requires the owning client: %w", action, models.ErrForbidden)
	case ActionReadOrder:
		if id.HasRole(models.RoleAdmin) {
			return nil
		}
		if id.HasRole(models.RoleClient) && res.OwnerID == id.UserID {
			return nil
		}
		return fmt.Errorf("%s of user %d by user %d: %w", action, res.OwnerID, id.UserID, models.ErrForbidden)
	case ActionReadProfile:
		return nil
	}
	return fmt.Errorf("%s: %w", action, models.ErrForbidden)
}
