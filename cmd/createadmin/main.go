// Command createadmin seeds a manager account so a fresh deployment can log
// in. Safe to rerun: an existing email is reported, not overwritten.
package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"bawabt.com/labour/core"
	"bawabt.com/labour/infrastructure/devops"
	"bawabt.com/labour/security"
)

func main() {
	email := flag.String("email", "", "email address of the manager account")
	name := flag.String("name", "Manager", "display name")
	password := flag.String("password", "", "initial password, at least 8 characters")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}
	if len(*password) < 8 {
		log.Fatal("password must be at least 8 characters")
	}

	_ = godotenv.Load()

	ctx := context.Background()
	cfg, err := devops.Load(ctx)
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}

	db, err := core.Connect(cfg.DSN, cfg.MaxConnections)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	if err := core.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	var existing core.User
	err = db.WithContext(ctx).First(&existing, "email = ?", *email).Error
	if err == nil {
		log.Fatalf("a user with email %s already exists", *email)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("check existing user: %v", err)
	}

	hash, err := security.HashPassword(*password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	user := core.User{
		ID:           core.NewID("usr_"),
		Email:        *email,
		Name:         *name,
		PasswordHash: hash,
		Role:         core.RoleManager,
		Active:       true,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		log.Fatalf("create user: %v", err)
	}

	log.Printf("created manager %s (%s)", user.Email, user.ID)
}
