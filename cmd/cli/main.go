package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/billionaireobi/adaladesigns/internal/api"
)

// Operator tool for the catalogue backend. The site has no public
// registration page; new admin accounts are created here.
func main() {
	registerCmd := flag.NewFlagSet("register-admin", flag.ExitOnError)
	username := registerCmd.String("username", "", "Username for the new admin")
	password := registerCmd.String("password", "", "Password for the new admin")

	if len(os.Args) < 2 {
		fmt.Println("expected 'register-admin' subcommand")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "register-admin":
		registerCmd.Parse(os.Args[2:])
		if *username == "" || *password == "" {
			fmt.Println("username and password are required")
			registerCmd.PrintDefaults()
			os.Exit(1)
		}
		registerAdmin(*username, *password)
	default:
		fmt.Println("expected 'register-admin' subcommand")
		os.Exit(1)
	}
}

func registerAdmin(username, password string) {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:5000/api"
	}

	client := api.NewClient(apiURL, apiURL, 15*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.Register(ctx, username, password); err != nil {
		var valErr *api.ValidationError
		if errors.As(err, &valErr) {
			fmt.Fprintf(os.Stderr, "Registration rejected: %s\n", api.Message(err, "invalid username or password"))
		} else {
			fmt.Fprintf(os.Stderr, "Registration failed: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("Admin '%s' registered successfully.\n", username)
}
