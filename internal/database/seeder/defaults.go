package seeder

import "job-trail/internal/config"

// Defaults returns the seeders enabled by cfg. The admin seeder is skipped
// unless both ADMIN_EMAIL and ADMIN_PASSWORD are set.
func Defaults(cfg config.Config) []Seeder {
	var out []Seeder
	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		out = append(out, AdminSeeder{
			Username: cfg.Admin.Username,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
		})
	}
	return out
}
