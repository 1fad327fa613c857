// ABOUTME: Login/logout CLI commands
// ABOUTME: Password is prompted hidden; it is never taken as a flag
package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/olivinha/console/api"
)

// LoginCommand exchanges credentials for a session. With the bearer
// transport the token lands on disk for later commands; with cookies the
// session only lives for this process, so login is mostly a connectivity
// check there.
func LoginCommand(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	user := fs.String("user", "", "Username (prompted if omitted)")
	_ = fs.Parse(args)

	username := strings.TrimSpace(*user)
	if username == "" {
		fmt.Print("Username: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}

	if err := client.Login(context.Background(), username, password); err != nil {
		return err
	}

	fmt.Println("✓ Logged in")
	return nil
}

// LogoutCommand drops the session locally and best-effort server-side.
func LogoutCommand(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	_ = fs.Parse(args)

	client.Logout(context.Background())
	fmt.Println("✓ Logged out")
	return nil
}

// promptPassword reads a password without echoing it.
func promptPassword() (string, error) {
	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	password := strings.TrimSpace(string(raw))
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	return password, nil
}
