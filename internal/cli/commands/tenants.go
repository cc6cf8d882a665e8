package commands

import (
	"context"
	"fmt"

	"ERPAdmin/internal/cli/api"
	"ERPAdmin/internal/cli/model"
	"ERPAdmin/internal/config"
)

type tenantsCmd struct{}

func (tenantsCmd) Name() string        { return "tenants" }
func (tenantsCmd) Description() string { return "List tenants" }
func (tenantsCmd) Usage() string {
	return "tenants [-page N] [-page-size N] [-search S] [-status S]"
}

func (tenantsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	var pf pageFlags
	var search, status string
	fs := newFlagSet("tenants")
	pf.register(fs)
	fs.StringVar(&search, "search", "", "name or slug substring")
	fs.StringVar(&status, "status", "", "tenant status")
	pos, err := parseArgs(fs, args)
	if err != nil || len(pos) != 0 {
		return ErrUsage
	}
	return withClient(ctx, cfg, func(c *api.Client) error {
		p, err := c.ListTenants(ctx, api.TenantQuery{Page: pf.page, PageSize: pf.pageSize, Search: search, Status: status})
		if err != nil {
			return err
		}
		t := newTable("ID", "NAME", "SLUG", "TIER", "STATUS", "CREATED")
		for _, tn := range p.Items {
			t.row(tn.ID, tn.Name, tn.Slug, model.Tier(tn.Tier).Name(), tn.Status, day(tn.CreatedAt))
		}
		t.flush()
		pageFooter(p.Page, p.TotalPages, p.Total)
		return nil
	})
}

type tenantCmd struct{}

func (tenantCmd) Name() string        { return "tenant" }
func (tenantCmd) Description() string { return "Show one tenant" }
func (tenantCmd) Usage() string       { return "tenant <id>" }

func (tenantCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	return withClient(ctx, cfg, func(c *api.Client) error {
		tn, err := c.GetTenant(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "ID:      %s\nName:    %s\nSlug:    %s\nTier:    %s\nStatus:  %s\nBilling: %s %s\nCreated: %s\nUpdated: %s\n",
			tn.ID, tn.Name, tn.Slug, model.Tier(tn.Tier).Name(), tn.Status,
			orDash(tn.BillingName), tn.BillingEmail, day(tn.CreatedAt), day(tn.UpdatedAt))
		return nil
	})
}

type usersCmd struct{}

func (usersCmd) Name() string        { return "users" }
func (usersCmd) Description() string { return "List users across tenants" }
func (usersCmd) Usage() string {
	return "users [-page N] [-page-size N] [-search S] [-tenant ID]"
}

func (usersCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	var pf pageFlags
	var search, tenant string
	fs := newFlagSet("users")
	pf.register(fs)
	fs.StringVar(&search, "search", "", "email or name substring")
	fs.StringVar(&tenant, "tenant", "", "tenant id")
	pos, err := parseArgs(fs, args)
	if err != nil || len(pos) != 0 {
		return ErrUsage
	}
	return withClient(ctx, cfg, func(c *api.Client) error {
		p, err := c.ListUsers(ctx, api.UserQuery{Page: pf.page, PageSize: pf.pageSize, Search: search, TenantID: tenant})
		if err != nil {
			return err
		}
		t := newTable("ID", "EMAIL", "NAME", "ROLE", "TENANT")
		for _, u := range p.Items {
			t.row(u.ID, u.Email, u.Name, u.Role, orDash(u.TenantName))
		}
		t.flush()
		pageFooter(p.Page, p.TotalPages, p.Total)
		return nil
	})
}

func init() {
	RegisterCmd(tenantsCmd{})
	RegisterCmd(tenantCmd{})
	RegisterCmd(usersCmd{})
}
