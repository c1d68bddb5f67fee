package model

import "time"

// Role names stored in users.role and carried in the JWT "role" claim.
// ADMIN manages users and may delete tasks; MANAGER plans projects and
// tasks; DEVELOPER works on assigned items.
const (
	RoleAdmin     = "ADMIN"
	RoleManager   = "MANAGER"
	RoleDeveloper = "DEVELOPER"
)

// ValidRole reports whether s is one of the known role names.
func ValidRole(s string) bool {
	switch s {
	case RoleAdmin, RoleManager, RoleDeveloper:
		return true
	}
	return false
}

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. Handlers define separate response types with JSON tags;
// the password hash never leaves the repository layer.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name shown in project and task views.
//  Email        – unique email address, stored lower-cased.
//  PasswordHash – bcrypt hashed password.
//  Role         – one of ADMIN, MANAGER, DEVELOPER.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
