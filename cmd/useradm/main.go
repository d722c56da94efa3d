// Command useradm seeds a user directly into the store, bypassing the HTTP
// API. The authenticated service cannot mint a token without an existing
// user, so the first user has to come from here.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/config"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/hashing"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/models"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	cfg := config.LoadConfig()

	reader := bufio.NewReader(os.Stdin)
	fmt.Println("Enter user name")

	userName, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return fmt.Errorf("user name must not be empty")
	}

	fmt.Println("Enter password")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	if len(password) == 0 {
		return fmt.Errorf("password must not be empty")
	}

	manager, err := store.NewPostgresManager(ctx, cfg.DatabaseDSN, cfg.StatementTimeout)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer manager.Close()

	hasher := hashing.NewBcryptHasher(0)
	digest, err := hasher.Hash(string(password))
	if err != nil {
		return err
	}

	err = manager.Users().Insert(ctx, &models.StoredUser{
		UserName:         userName,
		CredentialDigest: digest,
	})
	if err != nil {
		return err
	}

	fmt.Println("Success!")
	return nil
}
