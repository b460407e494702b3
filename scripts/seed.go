//go:build ignore

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hugh/compass/internal/auth"
	"github.com/hugh/compass/internal/database"
	"github.com/hugh/compass/internal/database/models"
	"github.com/hugh/compass/pkg/config"
	"github.com/hugh/compass/pkg/util"
	"github.com/joho/godotenv"
)

type seedUser struct {
	envPrefix string
	email     string
	password  string
	name      string
	role      models.Role
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env, "seed")

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService)

	users := []seedUser{
		{"ADMIN", "admin@example.com", "admin1234", "Admin", models.RoleAdmin},
		{"MENTOR", "mentor@example.com", "mentor1234", "Demo Mentor", models.RoleMentor},
		{"CLIENT", "client@example.com", "client1234", "Demo Client", models.RoleClient},
	}

	for _, u := range users {
		email := envOr(u.envPrefix+"_EMAIL", u.email)
		resp, err := authService.Register(context.Background(), auth.RegisterInput{
			Email:    email,
			Password: envOr(u.envPrefix+"_PASSWORD", u.password),
			Name:     envOr(u.envPrefix+"_NAME", u.name),
			Role:     u.role,
		})
		if err != nil {
			if errors.Is(err, auth.ErrUserExists) {
				existing, lookupErr := authService.GetUserByEmail(context.Background(), email)
				if lookupErr != nil {
					log.Fatalf("failed to load existing user %s: %v", email, lookupErr)
				}
				if existing.Role != u.role {
					fmt.Printf("warning: %s already exists with role %s, expected %s\n", email, existing.Role, u.role)
					continue
				}
				fmt.Printf("%s user already exists: %s\n", u.role, email)
				continue
			}
			log.Fatalf("failed to create %s user: %v", u.role, err)
		}

		fmt.Printf("%s user created: %s\n", u.role, resp.User.Email)
		fmt.Printf("Token: %s\n", resp.Token)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
