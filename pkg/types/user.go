package types

type User struct {
	ID             string `json:"id" db:"id"`
	Email          string `json:"email" db:"email"`
	HashedPassword string `json:"-" db:"hashed_password"`
	FullName       string `json:"full_name" db:"full_name"`
	IsActive       bool   `json:"is_active" db:"is_active"`
	CreatedAt      int64  `json:"created_at" db:"created_at"`
}
