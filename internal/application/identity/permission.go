package identity

import (
	"fmt"

	"github.com/commercehub/backoffice/internal/domain/identity"
	"github.com/commercehub/backoffice/internal/domain/procurement"
	"github.com/commercehub/backoffice/internal/domain/shared"
)

// PermissionEvaluator answers approval and override permission questions
// from the role capability table plus the actor's scope boundary.
type PermissionEvaluator struct {
	// allowDistributorSelfApproval lets distributor admins approve orders
	// routed to their own distributor. Off by default.
	allowDistributorSelfApproval bool
}

// NewPermissionEvaluator creates a new PermissionEvaluator
func NewPermissionEvaluator(allowDistributorSelfApproval bool) *PermissionEvaluator {
	return &PermissionEvaluator{
		allowDistributorSelfApproval: allowDistributorSelfApproval,
	}
}

// CanApprove checks whether the actor may approve, reject or cancel the
// given order. Capability comes from the role table; the scope boundary
// is then matched against the order's brand or distributor.
func (e *PermissionEvaluator) CanApprove(actor *identity.Actor, order *procurement.PurchaseOrder) error {
	if !actor.Active {
		return shared.NewDomainError("PERMISSION_DENIED", "Actor account is inactive")
	}

	caps := actor.Capabilities()
	if !caps.CanApprovePO {
		return shared.NewDomainError("PERMISSION_DENIED",
			fmt.Sprintf("Role %s cannot approve purchase orders", actor.Role))
	}

	switch caps.Scope {
	case identity.ScopeGlobal:
		return nil
	case identity.ScopeBrand:
		if !actor.BelongsToBrand(order.BrandID) {
			return shared.NewDomainError("PERMISSION_DENIED", "Order belongs to a different brand")
		}
		return nil
	case identity.ScopeDistributor:
		if !e.allowDistributorSelfApproval {
			return shared.NewDomainError("PERMISSION_DENIED", "Distributor self-approval is disabled")
		}
		if order.DistributorID == nil || !actor.BelongsToDistributor(*order.DistributorID) {
			return shared.NewDomainError("PERMISSION_DENIED", "Order is not routed to the actor's distributor")
		}
		return nil
	}

	return shared.NewDomainError("PERMISSION_DENIED", "Unknown permission scope")
}

// CanOverrideStock checks whether the actor may approve beyond available
// stock. Implies approval permission on the same order.
func (e *PermissionEvaluator) CanOverrideStock(actor *identity.Actor, order *procurement.PurchaseOrder) error {
	if err := e.CanApprove(actor, order); err != nil {
		return err
	}
	if !actor.Capabilities().CanOverrideStock {
		return shared.NewDomainError("PERMISSION_DENIED",
			fmt.Sprintf("Role %s cannot override stock limits", actor.Role))
	}
	return nil
}
