package entity

import "fmt"

// Role selects the storage partition of a user profile and the screen a
// user lands on after login.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleEditor  Role = "Editor"
	RoleInsurer Role = "insurer"
	RoleClient  Role = "client"
)

// Collection paths of the role partitions. Both end in UsersGroup so a
// collection-group query spans every partition.
const (
	UsersStaffCollection   = "users/staff/records"
	UsersMembersCollection = "users/members/records"
	UsersGroup             = "records"
)

var UserPartitions = []string{UsersStaffCollection, UsersMembersCollection}

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleEditor, RoleInsurer, RoleClient:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// IsStaff reports whether the role may manage catalog and user records.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleEditor
}

// PartitionFor returns the collection that holds profiles of the given role.
// Add, Update and Delete all resolve the path through here; a role change
// after creation would need the document moved, which nothing does.
func PartitionFor(role Role) (string, error) {
	switch role {
	case RoleAdmin, RoleEditor:
		return UsersStaffCollection, nil
	case RoleInsurer, RoleClient:
		return UsersMembersCollection, nil
	}
	return "", fmt.Errorf("no partition for role %q", role)
}

// RedirectTarget names the home screen for a role after login.
func RedirectTarget(role Role) string {
	switch role {
	case RoleAdmin:
		return "admin"
	case RoleEditor:
		return "editor"
	case RoleInsurer:
		return "insurer"
	default:
		return "client"
	}
}
