package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"ERPAdmin/internal/cli/api"
	"ERPAdmin/internal/cli/bootstrap"
	"ERPAdmin/internal/config"
)

// withClient открывает клиент API по конфигурации, вызывает fn и закрывает хранилище.
func withClient(ctx context.Context, cfg *config.Config, fn func(c *api.Client) error) error {
	c, done, err := bootstrap.OpenClient(ctx, cfg, Logger, api.WithSessionExpiredHook(func() {
		Logger.Infow("session cleared after failed refresh")
	}))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := done(); cerr != nil {
			Logger.Warnw("close session storage", "error", cerr)
		}
	}()
	return fn(c)
}

// pageFlags — общие флаги пагинации списков.
type pageFlags struct {
	page, pageSize int
}

func (p *pageFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&p.page, "page", 0, "page number (from 1)")
	fs.IntVar(&p.pageSize, "page-size", 0, "items per page")
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseArgs разбирает флаги вперемешку с позиционными аргументами
// (стандартный flag останавливается на первом позиционном) и возвращает позиционные.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, ErrUsage
		}
		args = fs.Args()
		if len(args) == 0 {
			return pos, nil
		}
		pos = append(pos, args[0])
		args = args[1:]
	}
}

// table пишет выровненные колонки в Out.
type table struct {
	tw *tabwriter.Writer
}

func newTable(header ...string) *table {
	t := &table{tw: tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)}
	t.row(header...)
	return t
}

func (t *table) row(cols ...string) {
	fmt.Fprintln(t.tw, strings.Join(cols, "\t"))
}

func (t *table) flush() { _ = t.tw.Flush() }

func pageFooter(page, totalPages, total int) {
	if totalPages == 0 {
		fmt.Fprintf(Out, "No results (%d total)\n", total)
		return
	}
	fmt.Fprintf(Out, "Page %d/%d (%d total)\n", page, totalPages, total)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// day обрезает RFC3339 до даты.
func day(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return orDash(ts)
}
