package repository

import "time"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOrganizer Role = "organizer"
)

func ValidRole(role Role) bool {
	return role == RoleAdmin || role == RoleOrganizer
}

// User is one account in the user configuration document. Passwords are
// stored as bcrypt hashes only.
type User struct {
	Username      string     `json:"username"`
	PasswordHash  string     `json:"passwordHash"`
	Role          Role       `json:"role"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
	DeactivatedAt *time.Time `json:"deactivatedAt,omitempty"`
	ReactivatedAt *time.Time `json:"reactivatedAt,omitempty"`
}

// UserRepository owns the users.json document. It replaces the ambient
// in-process copy of the user configuration: every lookup reads the file, so
// edits are visible without a reload step.
type UserRepository struct {
	file *jsonFile[map[string]*User]
}

func (r *UserRepository) FindAll() map[string]*User {
	users := r.file.load()
	if users == nil {
		return map[string]*User{}
	}
	return users
}

func (r *UserRepository) GetByUsername(username string) (*User, error) {
	user, ok := r.FindAll()[username]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) Count() int {
	return len(r.FindAll())
}

// Upsert inserts or replaces one user under the store lock.
func (r *UserRepository) Upsert(user *User) error {
	return r.file.update(func(users map[string]*User) (map[string]*User, error) {
		if users == nil {
			users = map[string]*User{}
		}
		users[user.Username] = user
		return users, nil
	})
}
