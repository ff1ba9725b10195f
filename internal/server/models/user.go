package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID  `db:"id"`
	UserName    string     `db:"username"`
	Email       string     `db:"email"`
	Active      bool       `db:"active"`
	ActivatedAt *time.Time `db:"activated_at"`
	CreatedAt   time.Time  `db:"created_at"`
}
