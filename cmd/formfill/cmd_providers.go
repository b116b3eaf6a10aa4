package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formfill/pkg/provider"
)

type providerStatus struct {
	name       string
	locality   provider.Locality
	endpoint   string
	model      string
	structured bool
	available  bool
}

func newProvidersCmd(a *app) *cobra.Command {
	var checkTimeout time.Duration
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List providers and check their availability",
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := provider.Names()
			statuses := make([]providerStatus, len(names))

			g, ctx := errgroup.WithContext(cmd.Context())
			for i, name := range names {
				g.Go(func() error {
					p, err := provider.New(name, a.cfg)
					if err != nil {
						return err
					}
					endpoint := ""
					if e, ok := p.(interface{ Endpoint() string }); ok {
						endpoint = e.Endpoint()
					}
					checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
					defer cancel()
					statuses[i] = providerStatus{
						name:       name,
						locality:   p.Descriptor().Locality,
						endpoint:   endpoint,
						model:      p.SelectedModel(),
						structured: p.SupportsStructuredOutput(),
						available:  p.IsAvailable(checkCtx),
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"", "Provider", "Locality", "Endpoint", "Model", "Structured", "Available"})
			for _, s := range statuses {
				active := ""
				if s.name == a.cfg.ActiveProvider {
					active = "*"
				}
				t.AppendRow(table.Row{active, s.name, s.locality, s.endpoint, s.model, yesNo(s.structured), yesNo(s.available)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
	cmd.Flags().DurationVar(&checkTimeout, "check-timeout", 3*time.Second, "Availability check timeout per provider")
	return cmd
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
