package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models the active provider serves",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.newProvider()
			if err != nil {
				return err
			}
			if model := a.v.GetString("model"); model != "" {
				if err := p.SetSelectedModel(cmd.Context(), model); err != nil {
					return err
				}
			}
			models, err := p.ListModels(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			selected := p.SelectedModel()
			for _, m := range models {
				marker := " "
				if m == selected {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, m)
			}
			return nil
		},
	}
}
