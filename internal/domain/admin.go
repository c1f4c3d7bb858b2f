package domain

import "time"

// AdminUser — учётная запись администратора витрины.
type AdminUser struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
