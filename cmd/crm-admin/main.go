// Command crm-admin performs out-of-band account administration against the
// configured store.
//
//	crm-admin provision -email boss@example.com -name "The Boss" [-role administrator]
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/app"
	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "crm-admin:", err)
		os.Exit(1)
	}
}

func usage() error {
	return errors.New("usage: crm-admin provision -email <email> -name <display name> [-role administrator|standard_user]")
}

func run(args []string) error {
	if len(args) == 0 {
		return usage()
	}

	switch args[0] {
	case "provision":
		return provision(args[1:])
	default:
		return usage()
	}
}

func provision(args []string) error {
	fs := flag.NewFlagSet("provision", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	name := fs.String("name", "", "display name")
	role := fs.String("role", string(domain.RoleAdministrator), "account role")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *name == "" {
		return usage()
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger := app.NewLogger(cfg, "crm-admin")

	password, err := readPassword(os.Stdin, os.Stderr)
	if err != nil {
		return err
	}

	st, err := app.OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	auth, err := app.NewAuthService(cfg, st, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	u, err := auth.ProvisionUser(ctx, *email, password, *name, domain.Role(*role))
	if err != nil {
		return err
	}

	fmt.Printf("provisioned %s (%s) as %s\n", u.Email, u.ID, u.Role)
	return nil
}

// readPassword prompts twice without echo on a terminal. Piped input is
// read as a single line.
func readPassword(in *os.File, prompt io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(prompt, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", err
	}

	fmt.Fprint(prompt, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
