package repository

import (
	"context"

	"github.com/tinashelorenzi/grease-monkey/internal/domain/entity"
)

// UserRepository reads customer profiles written by the auth flow. The
// dispatch core never creates or mutates them.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
