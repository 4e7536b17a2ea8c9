package workflow

// Role represents the authorization role carried by an acting user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRequester Role = "requester"
	RoleAreaLead  Role = "area_lead"
	RoleExecutive Role = "executive"
	RoleTreasury  Role = "treasury"
)

var validRoles = map[Role]bool{
	RoleAdmin:     true,
	RoleRequester: true,
	RoleAreaLead:  true,
	RoleExecutive: true,
	RoleTreasury:  true,
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValid returns true if the role is one of the known roles.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// Action tags the kind of transition recorded in the approval ledger.
type Action string

const (
	ActionSubmit  Action = "SUBMIT"
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
)

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}

// IsValid returns true if the action is one of the known ledger actions.
func (a Action) IsValid() bool {
	return a == ActionSubmit || a == ActionApprove || a == ActionReject
}
