package commands

import (
	"context"
	"time"

	"ERPAdmin/internal/cli/api"
	"ERPAdmin/internal/cli/model"
	"ERPAdmin/internal/cli/service"
	"ERPAdmin/internal/config"
)

type licensesCmd struct{}

func (licensesCmd) Name() string        { return "licenses" }
func (licensesCmd) Description() string { return "List licenses with expiry badges" }
func (licensesCmd) Usage() string {
	return "licenses [-status all|active|expiring|expired] [-tenant ID] [-page N] [-page-size N]"
}

func (licensesCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	var pf pageFlags
	var status, tenant string
	fs := newFlagSet("licenses")
	pf.register(fs)
	fs.StringVar(&status, "status", string(service.LicenseFilterAll), "all, active, expiring or expired")
	fs.StringVar(&tenant, "tenant", "", "tenant id")
	pos, err := parseArgs(fs, args)
	if err != nil || len(pos) != 0 {
		return ErrUsage
	}
	filter := service.LicenseFilter(status)
	switch filter {
	case service.LicenseFilterAll, service.LicenseFilterActive, service.LicenseFilterExpiring, service.LicenseFilterExpired:
	default:
		return ErrUsage
	}

	return withClient(ctx, cfg, func(c *api.Client) error {
		now := time.Now()
		p, err := service.NewLicenseService(c, func() time.Time { return now }).List(ctx, filter, tenant, pf.page, pf.pageSize)
		if err != nil {
			return err
		}
		t := newTable("KEY", "TENANT", "TIER", "MAX USERS", "EXPIRES", "STATUS")
		for _, l := range p.Items {
			badge, days := service.Badge(l, now)
			t.row(l.LicenseKey, l.TenantID, model.Tier(l.Tier).Name(), itoa(l.MaxUsers), day(l.ExpiresAt), badge.Label(days))
		}
		t.flush()
		pageFooter(p.Page, p.TotalPages, p.Total)
		return nil
	})
}

func init() { RegisterCmd(licensesCmd{}) }
