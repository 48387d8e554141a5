package users

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByGithubID(ctx context.Context, githubID string) (*User, error)
	LinkGithubID(ctx context.Context, userID string, githubID string) error
}
