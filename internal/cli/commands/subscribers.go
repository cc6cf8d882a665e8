package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ERPAdmin/internal/cli/api"
	"ERPAdmin/internal/cli/model"
	"ERPAdmin/internal/cli/service"
	"ERPAdmin/internal/config"
)

func itoa(n int) string { return strconv.Itoa(n) }

// licenseExpiry — дата истечения лицензии подписчика с пометкой.
func licenseExpiry(s model.Subscriber, now time.Time) string {
	if s.License == nil {
		return "no license"
	}
	out := day(s.License.ExpiresAt)
	switch {
	case service.LicenseExpired(s, now):
		out += " (expired)"
	case service.LicenseExpiringSoon(s, now):
		out += " (expiring soon)"
	}
	return out
}

type subscribersCmd struct{}

func (subscribersCmd) Name() string        { return "subscribers" }
func (subscribersCmd) Description() string { return "List subscribers" }
func (subscribersCmd) Usage() string {
	return "subscribers [-page N] [-page-size N] [-search S] [-status S] [-tier L1|L2|L3]"
}

func (subscribersCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	var pf pageFlags
	var search, status, tier string
	fs := newFlagSet("subscribers")
	pf.register(fs)
	fs.StringVar(&search, "search", "", "name or slug substring")
	fs.StringVar(&status, "status", "", "ACTIVE, SUSPENDED, TRIAL, EXPIRED or all")
	fs.StringVar(&tier, "tier", "", "L1, L2, L3 or all")
	pos, err := parseArgs(fs, args)
	if err != nil || len(pos) != 0 {
		return ErrUsage
	}
	if status != "all" {
		status = strings.ToUpper(status)
	}
	if tier != "all" {
		tier = strings.ToUpper(tier)
	}

	return withClient(ctx, cfg, func(c *api.Client) error {
		p, err := c.ListSubscribers(ctx, api.SubscriberQuery{Page: pf.page, PageSize: pf.pageSize, Search: search, Status: status, Tier: tier})
		if err != nil {
			return err
		}
		now := time.Now()
		t := newTable("ID", "NAME", "TIER", "STATUS", "USERS", "LICENSE")
		for _, s := range p.Items {
			t.row(s.ID, s.Name, s.Tier.Name(), string(s.Status), itoa(s.UserCount), licenseExpiry(s, now))
		}
		t.flush()
		pageFooter(p.Page, p.TotalPages, p.Total)
		return nil
	})
}

type subscriberCmd struct{}

func (subscriberCmd) Name() string        { return "subscriber" }
func (subscriberCmd) Description() string { return "Show subscriber details" }
func (subscriberCmd) Usage() string       { return "subscriber <id>" }

func (subscriberCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	return withClient(ctx, cfg, func(c *api.Client) error {
		s, err := c.GetSubscriber(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "ID:      %s\nName:    %s\nSlug:    %s\nDomain:  %s\nTier:    %s\nStatus:  %s\nUsers:   %d\nCreated: %s\nLicense: %s\n",
			s.ID, s.Name, s.Slug, orDash(s.Domain), s.Tier.Name(), s.Status, s.UserCount, day(s.CreatedAt),
			licenseExpiry(s.Subscriber, time.Now()))
		if s.License != nil {
			fmt.Fprintf(Out, "Key:     %s (max %d users)\n", s.License.LicenseKey, s.License.MaxUsers)
		}
		return nil
	})
}

type subscriberUsersCmd struct{}

func (subscriberUsersCmd) Name() string        { return "subscriber-users" }
func (subscriberUsersCmd) Description() string { return "List users of a subscriber" }
func (subscriberUsersCmd) Usage() string       { return "subscriber-users <id> [-page N] [-page-size N]" }

func (subscriberUsersCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	var pf pageFlags
	fs := newFlagSet("subscriber-users")
	pf.register(fs)
	pos, err := parseArgs(fs, args)
	if err != nil || len(pos) != 1 {
		return ErrUsage
	}
	return withClient(ctx, cfg, func(c *api.Client) error {
		p, err := c.ListSubscriberUsers(ctx, pos[0], api.PageQuery{Page: pf.page, PageSize: pf.pageSize})
		if err != nil {
			return err
		}
		t := newTable("ID", "EMAIL", "NAME", "ROLE", "ACTIVE", "LAST LOGIN")
		for _, u := range p.Items {
			last := "never"
			if u.LastLoginAt != nil {
				last = day(*u.LastLoginAt)
			}
			t.row(u.ID, u.Email, u.Name, u.Role, strconv.FormatBool(u.IsActive), last)
		}
		t.flush()
		pageFooter(p.Page, p.TotalPages, p.Total)
		return nil
	})
}

type subscriberStatusCmd struct{}

func (subscriberStatusCmd) Name() string        { return "subscriber-status" }
func (subscriberStatusCmd) Description() string { return "Change subscriber status" }
func (subscriberStatusCmd) Usage() string {
	return "subscriber-status <id> <ACTIVE|SUSPENDED|TRIAL|EXPIRED>"
}

func (subscriberStatusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	status := model.SubscriberStatus(strings.ToUpper(args[1]))
	return withClient(ctx, cfg, func(c *api.Client) error {
		res, err := c.UpdateSubscriberStatus(ctx, args[0], status)
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Subscriber %s (%s) is now %s\n", res.Name, res.ID, res.Status)
		return nil
	})
}

type subscriberRemoveCmd struct{}

func (subscriberRemoveCmd) Name() string { return "subscriber-remove" }
func (subscriberRemoveCmd) Description() string {
	return "Remove a subscriber with its users and licenses (requires -yes)"
}
func (subscriberRemoveCmd) Usage() string { return "subscriber-remove <id> -yes" }

func (subscriberRemoveCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	var yes bool
	fs := newFlagSet("subscriber-remove")
	fs.BoolVar(&yes, "yes", false, "confirm removal")
	pos, err := parseArgs(fs, args)
	if err != nil || len(pos) != 1 {
		return ErrUsage
	}
	if !yes {
		fmt.Fprintln(Out, "This deactivates the subscriber and all of its users and licenses. Re-run with -yes to confirm.")
		return ErrUsage
	}
	return withClient(ctx, cfg, func(c *api.Client) error {
		ack, err := c.RemoveSubscriber(ctx, pos[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "%s: %s (%s)\n", ack.Message, ack.Name, ack.ID)
		return nil
	})
}

func init() {
	RegisterCmd(subscribersCmd{})
	RegisterCmd(subscriberCmd{})
	RegisterCmd(subscriberUsersCmd{})
	RegisterCmd(subscriberStatusCmd{})
	RegisterCmd(subscriberRemoveCmd{})
}
