// Command admin creates or resets an admin panel operator.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/harentsoaR/mindcare-admin-api/internal/bootstrap"
	"github.com/harentsoaR/mindcare-admin-api/internal/config"
	"github.com/harentsoaR/mindcare-admin-api/internal/models"
	"github.com/harentsoaR/mindcare-admin-api/internal/utils"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password")
	name := flag.String("name", "", "display name")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("-email and -password are required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := bootstrap.NewLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stores, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open stores: %v", err)
	}
	defer stores.Close(context.Background())

	hash, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	admin := &models.Admin{
		Email:     strings.ToLower(strings.TrimSpace(*email)),
		Name:      *name,
		Password:  hash,
		Role:      models.RoleAdmin,
		CreatedAt: time.Now().UTC(),
	}
	if err := stores.Admins.Upsert(ctx, admin); err != nil {
		log.Fatalf("Failed to save admin: %v", err)
	}
	logger.Info("admin saved", slog.String("email", admin.Email))
}
