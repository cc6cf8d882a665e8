package commands

import (
	"context"
	"fmt"
	"strings"

	"ERPAdmin/internal/cli/api"
	"ERPAdmin/internal/cli/service"
	"ERPAdmin/internal/config"
)

type statsCmd struct{}

func (statsCmd) Name() string        { return "stats" }
func (statsCmd) Description() string { return "Show dashboard counters" }
func (statsCmd) Usage() string       { return "stats" }

func (statsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withClient(ctx, cfg, func(c *api.Client) error {
		st, err := service.NewDashboardService(c).Stats(ctx)
		if err != nil {
			if api.IsCode(err, api.CodeSessionExpired) {
				return err
			}
			fmt.Fprintf(Out, "Warning: dashboard stats unavailable (%s). Showing placeholder data.\n\n", describeError(err))
		}
		fmt.Fprintf(Out, "Tenants:   %d (%d active, %d new this month)\n", st.TotalTenants, st.ActiveTenants, st.NewTenantsThisMonth)
		fmt.Fprintf(Out, "Users:     %d (%d active)\n", st.TotalUsers, st.ActiveUsers)
		fmt.Fprintf(Out, "Licenses:  %d (%d active)\n", st.TotalLicenses, st.ActiveLicenses)
		fmt.Fprintf(Out, "Revenue:   $%.2f this month\n", st.RevenueThisMonth)
		return nil
	})
}

type analyticsCmd struct{}

func (analyticsCmd) Name() string        { return "analytics" }
func (analyticsCmd) Description() string { return "Tier distribution, growth and MRR estimate" }
func (analyticsCmd) Usage() string       { return "analytics" }

func (analyticsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withClient(ctx, cfg, func(c *api.Client) error {
		a, err := service.NewAnalyticsService(c, nil).Load(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Subscribers analysed: %d\n", a.SampleSize)
		fmt.Fprintf(Out, "Active rate:          %.1f%%\n", a.Stats.ActiveRate)
		fmt.Fprintf(Out, "Avg users per tenant: %.1f\n", a.Stats.AvgUsersPerTenant)
		fmt.Fprintf(Out, "Est. MRR:             $%d\n", a.Stats.EstimatedMRR)

		fmt.Fprintln(Out, "\nTier distribution")
		t := newTable("TIER", "COUNT", "SHARE")
		for _, s := range a.Tiers {
			t.row(s.Label, fmt.Sprint(s.Count), fmt.Sprintf("%.1f%%", s.Percentage))
		}
		t.flush()

		fmt.Fprintln(Out, "\nNew subscribers by month")
		t = newTable("MONTH", "COUNT", "")
		for _, m := range a.Growth {
			t.row(m.Month, fmt.Sprint(m.Count), strings.Repeat("#", m.Count))
		}
		t.flush()
		return nil
	})
}

func init() {
	RegisterCmd(statsCmd{})
	RegisterCmd(analyticsCmd{})
}
