package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"ERPAdmin/internal/cli/api"
	"ERPAdmin/internal/cli/service"
	"ERPAdmin/internal/config"
)

const reloginHint = "Your session has expired. Please login again: erpadmin login <email> <password>"

// Dispatch is the single entry point to execute CLI commands.
// It prints help and usage messages and returns a process exit code.
func Dispatch(ctx context.Context, cfg *config.Config, args []string) int {
	// If user passed global --help after flags parsing, show global usage
	for _, a := range os.Args[1:] {
		if a == "--help" || a == "-h" {
			fmt.Fprint(Out, FormatGlobalUsage())
			return 0
		}
	}

	if !flag.Parsed() {
		flag.Parse()
	}

	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return 2
	}

	name := strings.ToLower(args[0])
	if name == "help" { // erpadmin help [command]
		if len(args) == 1 {
			fmt.Fprint(Out, FormatGlobalUsage())
			return 0
		}
		if c, ok := Get(args[1]); ok {
			fmt.Fprintf(Out, "Usage: %s\n", c.Usage())
			return 0
		}
		fmt.Fprintf(Out, "Unknown command: %s\n\n", args[1])
		fmt.Fprint(Out, FormatGlobalUsage())
		return 2
	}

	c, ok := Get(name)
	if !ok {
		fmt.Fprintf(Out, "Unknown command: %s\n\n", name)
		fmt.Fprint(Out, FormatGlobalUsage())
		return 2
	}

	err := c.Run(ctx, cfg, args[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUsage):
		fmt.Fprintf(Out, "Usage: %s\n", c.Usage())
		return 2
	default:
		Logger.Debugw("command failed", "command", name, "error", err)
		fmt.Fprintf(Out, "%s error: %s\n", name, describeError(err))
		return 1
	}
}

// describeError превращает ошибку в сообщение для оператора.
func describeError(err error) string {
	switch {
	case api.IsCode(err, api.CodeSessionExpired):
		return reloginHint
	case api.IsCode(err, api.CodeNetworkError):
		return "Failed to connect to server. Please check your connection."
	case errors.Is(err, service.ErrNotAuthenticated):
		return "not logged in, run: erpadmin login <email> <password>"
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%s (%s)", apiErr.Message, apiErr.Code)
	}
	return err.Error()
}
