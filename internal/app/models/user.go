package models

// Primary roles as issued by the identity file
const (
	PrimaryRoleFaculty = "faculty"
	PrimaryRoleStudent = "student"
)

// RoleOrgOfficer marks a student who holds office in at least one organization
const RoleOrgOfficer = "org_officer"

// ViewRole is the capability profile a user browses the directory with
type ViewRole string

const (
	ViewRoleFaculty ViewRole = "FACULTY"
	ViewRoleStudent ViewRole = "STUDENT"
	ViewRoleOfficer ViewRole = "OFFICER"
)

// User is an account from the users file
type User struct {
	ID           string   `yaml:"id" json:"id"`
	Username     string   `yaml:"username" json:"username"`
	Name         string   `yaml:"name" json:"name"`
	PasswordHash string   `yaml:"password_hash" json:"-"`
	PrimaryRole  string   `yaml:"primary_role" json:"primaryRole"`
	Roles        []string `yaml:"roles" json:"roles"`
}

// Principal is the authenticated caller as carried by an access token
type Principal struct {
	UserID      string
	Name        string
	PrimaryRole string
	Roles       []string
}

// PrincipalFromUser builds the principal for a freshly authenticated user
func PrincipalFromUser(u *User) Principal {
	return Principal{
		UserID:      u.ID,
		Name:        u.Name,
		PrimaryRole: u.PrimaryRole,
		Roles:       append([]string(nil), u.Roles...),
	}
}

// HasRole reports whether role is among the principal's secondary roles
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ViewRole picks the browsing profile. Unknown primary roles get the read-only student view.
func (p Principal) ViewRole() ViewRole {
	switch p.PrimaryRole {
	case PrimaryRoleFaculty:
		return ViewRoleFaculty
	case PrimaryRoleStudent:
		if p.HasRole(RoleOrgOfficer) {
			return ViewRoleOfficer
		}
		return ViewRoleStudent
	default:
		return ViewRoleStudent
	}
}
