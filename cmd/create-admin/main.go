package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/stemsi/bezem-backend/internal/config"
	"github.com/stemsi/bezem-backend/internal/database"
	"github.com/stemsi/bezem-backend/internal/logger"
	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stemsi/bezem-backend/internal/repository"
	"github.com/stemsi/bezem-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	adminRepo := repository.NewAdminRepository(pool)
	adminService := service.NewAdminService(adminRepo, service.NewAuthService(cfg))

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	all := model.AllPermissions()

	// An existing admin only gets its permissions reset.
	if existing, err := adminRepo.GetByEmail(ctx, strings.ToLower(email)); err == nil {
		fmt.Printf("Admin %s already exists (ID %d).\n", existing.Email, existing.ID)
		for _, code := range all {
			mark := " "
			if existing.Can(model.Permission(code)) {
				mark = "x"
			}
			fmt.Printf("  [%s] %s\n", mark, code)
		}
		fmt.Printf("New permissions (comma separated, empty for all: %s): ", strings.Join(all, ", "))
		permInput, _ := reader.ReadString('\n')
		permissions, err := parsePermissions(permInput, all)
		if err != nil {
			fmt.Println("Error:", err)
			return
		}
		if err := adminRepo.SetPermissions(ctx, existing.ID, permissions); err != nil {
			log.Fatal().Err(err).Msg("Failed to update permissions")
		}
		fmt.Printf("\nPermissions of '%s' set to: %s\n", existing.Email, strings.Join(permissions, ", "))
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	fmt.Printf("Permissions (comma separated, empty for all: %s): ", strings.Join(all, ", "))
	permInput, _ := reader.ReadString('\n')
	permissions, err := parsePermissions(permInput, all)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	newAdmin := &model.Admin{
		Email:       email,
		Name:        name,
		Permissions: permissions,
	}

	if err := adminService.Create(ctx, newAdmin, password); err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %d\n", newAdmin.Name, newAdmin.Email, newAdmin.ID)
	fmt.Printf("Permissions: %s\n", strings.Join(newAdmin.Permissions, ", "))
}

func parsePermissions(input string, known []string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return known, nil
	}

	valid := make(map[string]bool, len(known))
	for _, p := range known {
		valid[p] = true
	}

	var out []string
	for _, p := range strings.Split(input, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !valid[p] {
			return nil, fmt.Errorf("unknown permission %q", p)
		}
		out = append(out, p)
	}
	return out, nil
}
