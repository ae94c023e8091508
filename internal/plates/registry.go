package plates

import (
	"context"

	"spotmarket/internal/domain"
	"spotmarket/internal/domain/models"
	"spotmarket/internal/utils"
)

// UserLookup is satisfied by repositories.UserRepository.
type UserLookup interface {
	GetByPID(ctx context.Context, pid string) (models.User, error)
}

// Registry answers which plate is registered for an account.
type Registry struct {
	Users UserLookup
}

// ExpectedPlate returns the normalized plate of pid. A user without a plate is NotFound.
func (r Registry) ExpectedPlate(ctx context.Context, pid string) (string, error) {
	u, err := r.Users.GetByPID(ctx, pid)
	if err != nil {
		if domain.IsNotFound(err) || domain.IsTimeout(err) {
			return "", err
		}
		return "", domain.DependencyError{Service: "plate registry", Err: err}
	}

	plate := utils.NormalizePlate(u.LicensePlate)
	if plate == "" {
		return "", domain.NotFoundError{Resource: "registered plate"}
	}
	return plate, nil
}
