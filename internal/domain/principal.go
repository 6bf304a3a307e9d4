package domain

// Role is the closed set of operator roles. Admins manage master data
// and may override ledger rows; officers record payments in the field.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleOfficer Role = "officer"
)

// ParseRole validates a role string against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleOfficer:
		return RoleOfficer, nil
	}
	return "", &ErrValidation{Field: "role", Message: "must be admin or officer"}
}

// Principal identifies the authenticated caller of an operation.
// It is passed explicitly into any service method that needs
// authorization; there is no ambient per-request role state.
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanRecordPayments reports whether the principal may append CREDIT
// transactions. Both roles can; the check exists so the policy has one
// home.
func (p Principal) CanRecordPayments() bool {
	return p.Role == RoleAdmin || p.Role == RoleOfficer
}
