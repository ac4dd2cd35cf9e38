package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ledgrio/ledgrio-go/client"
	"github.com/ledgrio/ledgrio-go/internal/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg := config.New()
	setupLogging(cfg)

	if len(args) == 0 {
		displayAppname(cfg.GetAppName())
		fmt.Println("usage: ledgrio <login|whoami|logout>")
		return nil
	}

	c, err := client.New(cfg, client.WithLogger(log.Logger))
	if err != nil {
		return fmt.Errorf("client.New: %w", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch args[0] {
	case "login":
		return loginCmd(ctx, c, args[1:])
	case "whoami":
		return whoamiCmd(ctx, c)
	case "logout":
		return logoutCmd(ctx, c)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func loginCmd(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("login requires -email and -password")
	}

	sess, err := c.Login(ctx, client.Credentials{Email: *email, Password: *password})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	fmt.Printf("Logged in as %s %s <%s>\n", sess.User.FirstName, sess.User.LastName, sess.User.Email)
	return nil
}

func whoamiCmd(ctx context.Context, c *client.Client) error {
	user, err := c.GetCurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("whoami: %w", err)
	}
	fmt.Printf("%s %s <%s> role=%s\n", user.FirstName, user.LastName, user.Email, user.Role)
	return nil
}

func logoutCmd(ctx context.Context, c *client.Client) error {
	if err := c.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	fmt.Println("Logged out")
	return nil
}

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
