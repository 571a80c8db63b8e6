package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/config"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/db"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/logger"
)

// Signup never yields an admin role; the first admin is minted with this
// tool, further admins via PATCH /admin/manage-users/:id/role.
func main() {
	email := flag.String("email", "", "Email of the user to promote to admin")
	flag.Parse()

	if *email == "" {
		log.Fatalf("usage: promote_admin -email user@example.com")
	}

	logger.Init()
	defer logger.Log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	db.Init(cfg.DatabaseURL)

	tag, err := db.Conn.Exec(context.Background(),
		`UPDATE users SET role = 'admin' WHERE email = $1`, *email)
	if err != nil {
		log.Fatalf("failed to promote user: %v", err)
	}
	if tag.RowsAffected() == 0 {
		log.Fatalf("no user found with email %s", *email)
	}

	fmt.Printf("%s is now an admin\n", *email)
}
