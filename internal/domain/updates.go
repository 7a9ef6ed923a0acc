package domain

import (
	"strings"
	"time"
)

// Fields a client may modify with a partial update.
var (
	TaskUpdatableFields = []string{"description", "completed"}
	UserUpdatableFields = []string{"name", "email", "password", "age"}
)

// ValidateUpdateFields returns ErrInvalidUpdates if any of keys is not in
// allowed.
func ValidateUpdateFields(keys []string, allowed []string) error {
	permitted := make(map[string]struct{}, len(allowed))
	for _, field := range allowed {
		permitted[field] = struct{}{}
	}
	for _, key := range keys {
		if _, ok := permitted[key]; !ok {
			return ErrInvalidUpdates
		}
	}
	return nil
}

// TaskPatch holds the fields of a partial task update. Nil fields are left
// unchanged.
type TaskPatch struct {
	Description *string
	Completed   *bool
}

// Apply applies p to t and validates the result. On error t is unchanged.
func (p TaskPatch) Apply(t *Task) error {
	updated := *t
	if p.Description != nil {
		updated.Description = strings.TrimSpace(*p.Description)
	}
	if p.Completed != nil {
		updated.Completed = *p.Completed
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	updated.UpdatedAt = time.Now().UTC()
	*t = updated
	return nil
}

// UserPatch holds the fields of a partial profile update.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// Apply applies p to u and validates the result. A new password is left in
// u.Password for the store to hash. On error u is unchanged.
func (p UserPatch) Apply(u *User) error {
	updated := *u
	updated.Password = ""
	if p.Name != nil {
		updated.Name = *p.Name
	}
	if p.Email != nil {
		updated.Email = *p.Email
	}
	if p.Password != nil {
		updated.Password = *p.Password
		if strings.TrimSpace(updated.Password) == "" {
			return ErrEmptyPassword
		}
	}
	if p.Age != nil {
		updated.Age = *p.Age
	}
	updated.Normalize()
	if err := updated.Validate(); err != nil {
		return err
	}

	updated.UpdatedAt = time.Now().UTC()
	*u = updated
	return nil
}
