package ports

import (
	"context"

	"github.com/careconnect/healthcare-portal/internal/core/domain"
)

// RegisterInput carries a new account registration. Doctor accounts are
// created with pending status and require admin approval before login.
type RegisterInput struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	Role           string
	Specialization string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
