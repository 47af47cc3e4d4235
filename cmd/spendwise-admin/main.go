// Command spendwise-admin manages users from the command line. The API has
// no self-service signup; accounts and their API keys are provisioned here.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"spendwise/internal/config"
	"spendwise/internal/storage"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database %s: %v\n", cfg.SQLiteDBPath, err)
		os.Exit(1)
	}
	defer repo.Close()

	ctx := context.Background()

	switch os.Args[1] {
	case "create-user":
		fs := flag.NewFlagSet("create-user", flag.ExitOnError)
		name := fs.String("name", "", "display name for the new user")
		_ = fs.Parse(os.Args[2:])
		if *name == "" {
			fmt.Fprintln(os.Stderr, "create-user: -name is required")
			os.Exit(2)
		}

		user := storage.User{
			ID:        uuid.NewString(),
			Name:      *name,
			APIKey:    generateAPIKey(),
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.CreateUser(ctx, user); err != nil {
			fmt.Fprintf(os.Stderr, "create user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("user created\n  id:      %s\n  name:    %s\n  api key: %s\n", user.ID, user.Name, user.APIKey)

	case "list-users":
		users, err := repo.ListUsers(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list users: %v\n", err)
			os.Exit(1)
		}
		if len(users) == 0 {
			fmt.Println("no users")
			return
		}
		for _, u := range users {
			fmt.Printf("%s  %s  created %s\n", u.ID, u.Name, u.CreatedAt.Format("2006-01-02"))
		}

	default:
		usage()
		os.Exit(2)
	}
}

func generateAPIKey() string {
	bytes := make([]byte, 24)
	if _, err := rand.Read(bytes); err != nil {
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	return "sw_" + hex.EncodeToString(bytes)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: spendwise-admin <command>

commands:
  create-user -name <name>   create a user and print its API key
  list-users                 list existing users`)
}
