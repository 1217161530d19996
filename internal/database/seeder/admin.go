package seeder

import (
	"context"
	"fmt"
	"strings"

	"job-trail/internal/database"
	"job-trail/internal/domain/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AdminSeeder creates the administrator account, or promotes an existing
// account with the same email. An existing password is never overwritten.
type AdminSeeder struct {
	Username string
	Email    string
	Password string
	// Cost defaults to bcrypt.DefaultCost.
	Cost int
}

func (AdminSeeder) Name() string { return "admin" }

func (s AdminSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "users", "id", "username", "email", "first_name", "last_name", "password_hash", "role"); err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(s.Email))
	if email == "" {
		return fmt.Errorf("admin email is empty")
	}
	if n := len(s.Password); n < 8 || n > 72 {
		return fmt.Errorf("admin password must be 8 to 72 bytes")
	}
	username := strings.TrimSpace(s.Username)
	if username == "" {
		username = "admin"
	}
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO users (id, username, email, first_name, last_name, password_hash, role, is_verified)
			 VALUES ($1, $2, $3, 'Admin', 'User', $4, $5, TRUE)
			 ON CONFLICT (email) DO UPDATE SET role = EXCLUDED.role, updated_at = now()`,
			uuid.New(), username, email, string(hash), string(user.RoleAdmin),
		)
		return err
	})
}
