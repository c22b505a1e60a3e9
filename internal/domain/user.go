package domain

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// User is owned by the external auth service; this backend only reads it.
type User struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Gender     Gender    `json:"gender" db:"gender"`
	LookingFor []Gender  `json:"lookingFor" db:"looking_for"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

func (u *User) Seeks(g Gender) bool {
	for _, want := range u.LookingFor {
		if want == g {
			return true
		}
	}
	return false
}

// CompatibleWith reports whether both users are looking for each other's gender.
func (u *User) CompatibleWith(other *User) bool {
	return u.Seeks(other.Gender) && other.Seeks(u.Gender)
}
