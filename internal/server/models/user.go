package models

import (
	"database/sql"
	"time"
)

// Role is the access level of a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is one identity row. OpenID is the opaque external identity string
// and the natural key: repeated upserts with the same OpenID merge into a
// single row.
type User struct {
	ID           int64
	OpenID       string
	Name         sql.NullString
	Email        sql.NullString
	LoginMethod  sql.NullString
	Role         Role
	LastSignedIn time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StringPatch is a tri-state optional text field for upserts: not
// mentioned (Set=false), explicitly cleared (Set=true, Value invalid), or
// set to a value. The distinction keeps partial merges from overwriting
// stored fields with NULL.
type StringPatch struct {
	Set   bool
	Value sql.NullString
}

// PatchValue returns a StringPatch that sets the field to v.
func PatchValue(v string) StringPatch {
	return StringPatch{Set: true, Value: sql.NullString{String: v, Valid: true}}
}

// PatchClear returns a StringPatch that explicitly clears the field.
func PatchClear() StringPatch {
	return StringPatch{Set: true}
}

// UserUpsert carries the fields of an insert-or-merge request. Only
// OpenID is required; nil/unset fields are left untouched on conflict.
type UserUpsert struct {
	OpenID       string
	Name         StringPatch
	Email        StringPatch
	LoginMethod  StringPatch
	LastSignedIn *time.Time
	Role         *Role
}
