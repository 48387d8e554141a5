package users

import "time"

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash []byte
	GithubID     string
	CreatedAt    time.Time
}
