package commands

import (
	"context"
	"fmt"

	"ERPAdmin/internal/cli/api"
	"ERPAdmin/internal/cli/service"
	"ERPAdmin/internal/config"
)

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login as platform admin and store the session" }
func (loginCmd) Usage() string       { return "login <email> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	return withClient(ctx, cfg, func(c *api.Client) error {
		u, err := service.NewAuthService(c).Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Logged in as %s <%s> (%s)\n", u.Name, u.Email, u.TenantName)
		return nil
	})
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Revoke the session and forget local tokens" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withClient(ctx, cfg, func(c *api.Client) error {
		if err := service.NewAuthService(c).Logout(ctx); err != nil {
			// локальная сессия уже очищена
			fmt.Fprintf(Out, "Logged out locally (server: %s)\n", describeError(err))
			return nil
		}
		fmt.Fprintln(Out, "Logged out")
		return nil
	})
}

type whoamiCmd struct{}

func (whoamiCmd) Name() string        { return "whoami" }
func (whoamiCmd) Description() string { return "Verify the stored session and show the current admin" }
func (whoamiCmd) Usage() string       { return "whoami" }

func (whoamiCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withClient(ctx, cfg, func(c *api.Client) error {
		u, err := service.NewAuthService(c).CheckAuth(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "ID:     %s\nName:   %s\nEmail:  %s\nRole:   %s\nTenant: %s\nTier:   %s\n",
			u.ID, u.Name, u.Email, u.Role, u.TenantName, u.Tier)
		return nil
	})
}

func init() {
	RegisterCmd(loginCmd{})
	RegisterCmd(logoutCmd{})
	RegisterCmd(whoamiCmd{})
}
