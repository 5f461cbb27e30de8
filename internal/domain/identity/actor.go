package identity

import (
	"context"

	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Actor is the resolved profile of an authenticated user: the role plus
// the brand/distributor boundary the role is scoped to.
type Actor struct {
	shared.BaseEntity
	Username      string     `gorm:"type:varchar(100);not null"`
	Email         string     `gorm:"type:varchar(200)"`
	Role          Role       `gorm:"type:varchar(30);not null"`
	BrandID       *uuid.UUID `gorm:"type:uuid;index"`
	DistributorID *uuid.UUID `gorm:"type:uuid;index"`
	Active        bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Actor) TableName() string {
	return "actors"
}

// Capabilities returns the capability set the actor's role carries
func (a *Actor) Capabilities() Capabilities {
	return CapabilitiesFor(a.Role)
}

// BelongsToBrand reports whether the actor is scoped to the given brand
func (a *Actor) BelongsToBrand(brandID uuid.UUID) bool {
	return a.BrandID != nil && *a.BrandID == brandID
}

// BelongsToDistributor reports whether the actor is scoped to the given distributor
func (a *Actor) BelongsToDistributor(distributorID uuid.UUID) bool {
	return a.DistributorID != nil && *a.DistributorID == distributorID
}

// ActorRepository resolves actor profiles.
// Backed by the directory store, optionally fronted by a cache.
type ActorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Actor, error)
}
