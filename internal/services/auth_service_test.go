package services_test

import (
	"errors"
	"testing"

	"watchtrade_backend/internal/models"
	"watchtrade_backend/internal/repositories"
	"watchtrade_backend/internal/services"
)

type fakeAuthRepo struct {
	repositories.AuthRepository
	users       map[int64]models.User
	activeFlags map[int64]bool
}

func (f *fakeAuthRepo) FindUserByID(userID int64) (*models.User, error) {
	if u, ok := f.users[userID]; ok {
		return &u, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeAuthRepo) SetUserActive(executor repositories.SQLExecutor, userID int64, active bool) error {
	if _, ok := f.users[userID]; !ok {
		return repositories.ErrNotFound
	}
	if f.activeFlags == nil {
		f.activeFlags = map[int64]bool{}
	}
	f.activeFlags[userID] = active
	return nil
}

func TestSetUserActive(t *testing.T) {
	repo := &fakeAuthRepo{users: map[int64]models.User{
		5: {ID: 5, Username: "ops", Role: models.RoleOperator, IsActive: true},
	}}
	svc := services.NewAuthService(repo, nil)
	director := services.Actor{UserID: 1, Username: "boss", Role: models.RoleDirector}

	t.Run("non-director is rejected", func(t *testing.T) {
		op := services.Actor{UserID: 3, Role: models.RoleOperator}
		if _, err := svc.SetUserActive(op, 5, false); !errors.Is(err, services.ErrInsufficientPermission) {
			t.Errorf("error = %v, want ErrInsufficientPermission", err)
		}
	})

	t.Run("director cannot deactivate itself", func(t *testing.T) {
		if _, err := svc.SetUserActive(director, 1, false); !errors.Is(err, services.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := svc.SetUserActive(director, 42, false); !errors.Is(err, services.ErrUserNotFound) {
			t.Errorf("error = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("director deactivates another account", func(t *testing.T) {
		if _, err := svc.SetUserActive(director, 5, false); err != nil {
			t.Fatalf("SetUserActive: %v", err)
		}
		if active, ok := repo.activeFlags[5]; !ok || active {
			t.Errorf("stored active flag = %v, want false", repo.activeFlags[5])
		}
	})
}
