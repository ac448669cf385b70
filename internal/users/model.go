package users

import "time"

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Provider     string    `json:"provider"`
	Email        string    `json:"email,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
