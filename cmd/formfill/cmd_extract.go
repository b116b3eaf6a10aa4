package main

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formfill/pkg/fields"
	"github.com/goliatone/go-formfill/pkg/openapi"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		ff        fillFlags
		specPath  string
		operation string
		form      string
		selector  string
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract values as JSON without writing them anywhere",
		Example: "  formfill extract --openapi api.yaml --operation createUser --text mail.txt\n" +
			"  formfill extract --form page.html --text notes.txt",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (specPath == "") == (form == "") {
				return errors.New("exactly one of --openapi or --form is required")
			}
			text, err := readText(cmd, ff.text)
			if err != nil {
				return err
			}

			var descs []fields.Descriptor
			if specPath != "" {
				if operation == "" {
					return errors.New("--operation is required with --openapi")
				}
				data, err := openapi.Read(cmd.Context(), specPath, openapi.WithHTTPFallback(30*time.Second))
				if err != nil {
					return err
				}
				descs, err = openapi.Fields(cmd.Context(), data, operation)
				if err != nil {
					return err
				}
			} else {
				doc, err := loadDocument(form)
				if err != nil {
					return err
				}
				target, err := doc.Form(selector)
				if err != nil {
					return err
				}
				descs = fields.Build(target)
			}

			p, err := a.newProvider()
			if err != nil {
				return err
			}
			filler, err := a.newFiller(p, &ff)
			if err != nil {
				return err
			}
			values, err := filler.Extract(cmd.Context(), descs, text)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(values)
		},
	}
	ff.register(cmd)
	f := cmd.Flags()
	f.StringVar(&specPath, "openapi", "", "OpenAPI 3 document path or URL (JSON or YAML)")
	f.StringVar(&operation, "operation", "", "Operation id, or method:path")
	f.StringVar(&form, "form", "", "HTML file holding the form")
	f.StringVar(&selector, "selector", "", "Form selector; first form when empty")
	return cmd
}
