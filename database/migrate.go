package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/pos-app/models"
	"github.com/yeremiapane/pos-app/services"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the server needs.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// SeedAdmin creates the admin account unless it already exists. It reports
// whether a user was created.
func SeedAdmin(ctx context.Context, users *services.UserService, name, email, password string) (bool, error) {
	if password == "" {
		return false, errors.New("seed admin: password is required")
	}
	_, err := users.Register(ctx, services.RegisterInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	})
	if errors.Is(err, services.ErrUserExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}
