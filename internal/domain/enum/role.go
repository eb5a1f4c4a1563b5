package enum

// Role is a staff member's access level
type Role string

const (
	RoleAdmin      Role = "admin"
	RolePharmacist Role = "pharmacist"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RolePharmacist
}
