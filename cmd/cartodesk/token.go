package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kirinyoku/cartodesk/internal/auth"
	"github.com/kirinyoku/cartodesk/internal/config"
	"github.com/kirinyoku/cartodesk/internal/rbac"
)

type TokenCmd struct {
	User         string `short:"u" long:"user" required:"true" description:"user id placed in the token"`
	Role         string `short:"r" long:"role" default:"practitioner" choice:"admin" choice:"practitioner" description:"caller role"`
	Practitioner string `short:"p" long:"practitioner" description:"practitioner id a practitioner token is bound to"`
}

func (c *TokenCmd) Execute(_ []string) error {
	if c.Role == rbac.RolePractitioner && c.Practitioner == "" {
		return errors.New("--practitioner is required for the practitioner role")
	}

	authCfg, err := config.NewAuth()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	m, err := auth.NewManager(authCfg)
	if err != nil {
		return err
	}

	tok, err := m.Issue(time.Now(), auth.Identity{
		UserID:         c.User,
		Role:           c.Role,
		PractitionerID: c.Practitioner,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(os.Stdout, tok)
	return err
}
