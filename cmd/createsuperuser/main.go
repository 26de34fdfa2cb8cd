package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"

	"recipe-api/internal/config"
	"recipe-api/internal/database"
	"recipe-api/internal/user"
)

// createsuperuser inserts a user with the staff and superuser flags
// set, using the same validation and hashing as the registration
// endpoint.
func main() {
	email := flag.String("email", "", "email address of the superuser")
	password := flag.String("password", "", "password of the superuser")
	name := flag.String("name", "", "display name of the superuser")
	flag.Parse()

	if *email == "" || *password == "" || *name == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*email, *password, *name); err != nil {
		log.Fatalf("createsuperuser: %v", err)
	}
}

func run(email, password, name string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sqlDB, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	service := user.NewService(user.NewPostgresRepository(database.NewBunDB(sqlDB)))

	created, err := service.CreateSuperuser(context.Background(), email, password, name)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return fmt.Errorf("a user with email %q already exists", email)
		}
		return err
	}

	fmt.Printf("superuser created: %s (%s)\n", created.Email, created.ID)
	return nil
}
