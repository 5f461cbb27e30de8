package identity

// Role is the closed set of back-office roles. Permission decisions are
// driven by the capability table below, never by matching on role names.
type Role string

const (
	RoleSuperAdmin       Role = "SUPER_ADMIN"
	RoleBrandAdmin       Role = "BRAND_ADMIN"
	RoleBrandFinance     Role = "BRAND_FINANCE"
	RoleBrandStaff       Role = "BRAND_STAFF"
	RoleDistributorAdmin Role = "DISTRIBUTOR_ADMIN"
	RoleDistributorStaff Role = "DISTRIBUTOR_STAFF"
	RoleManufacturer     Role = "MANUFACTURER"
)

// IsValid checks if the role is a known Role
func (r Role) IsValid() bool {
	_, ok := capabilityTable[r]
	return ok
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// ScopeKind describes which entity boundary a role's permissions apply to
type ScopeKind int

const (
	// ScopeGlobal grants access across all brands and distributors
	ScopeGlobal ScopeKind = iota
	// ScopeBrand limits access to the actor's own brand
	ScopeBrand
	// ScopeDistributor limits access to the actor's own distributor
	ScopeDistributor
)

// Capabilities lists the workflow permissions a role carries
type Capabilities struct {
	CanApprovePO     bool
	CanOverrideStock bool
	Scope            ScopeKind
}

var capabilityTable = map[Role]Capabilities{
	RoleSuperAdmin:       {CanApprovePO: true, CanOverrideStock: true, Scope: ScopeGlobal},
	RoleBrandAdmin:       {CanApprovePO: true, CanOverrideStock: true, Scope: ScopeBrand},
	RoleBrandFinance:     {CanApprovePO: true, CanOverrideStock: false, Scope: ScopeBrand},
	RoleBrandStaff:       {CanApprovePO: false, CanOverrideStock: false, Scope: ScopeBrand},
	RoleDistributorAdmin: {CanApprovePO: true, CanOverrideStock: false, Scope: ScopeDistributor},
	RoleDistributorStaff: {CanApprovePO: false, CanOverrideStock: false, Scope: ScopeDistributor},
	RoleManufacturer:     {CanApprovePO: false, CanOverrideStock: false, Scope: ScopeGlobal},
}

// CapabilitiesFor returns the capability set for a role.
// Unknown roles carry no capabilities.
func CapabilitiesFor(role Role) Capabilities {
	if caps, ok := capabilityTable[role]; ok {
		return caps
	}
	return Capabilities{}
}
