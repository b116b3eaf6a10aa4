package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFieldCmd(a *app) *cobra.Command {
	var (
		form    string
		element string
		extra   string
		out     string
	)
	cmd := &cobra.Command{
		Use:     "field",
		Short:   "Generate a plausible value for one form control",
		Example: "  formfill field --form page.html --element '#email' --context 'German customer'",
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := loadDocument(form)
			if err != nil {
				return err
			}
			el := doc.Find(element)
			if el == nil {
				return fmt.Errorf("element %q not found", element)
			}
			p, err := a.newProvider()
			if err != nil {
				return err
			}
			filler, err := a.newFiller(p, nil)
			if err != nil {
				return err
			}

			res, err := filler.FillSingleField(cmd.Context(), el, extra)
			if err != nil {
				return err
			}
			printResult(cmd.ErrOrStderr(), res)
			return writeDocument(cmd, doc, out)
		},
	}
	f := cmd.Flags()
	f.StringVar(&form, "form", "", "HTML file holding the control (required)")
	f.StringVar(&element, "element", "", "Control selector, for example '#email' (required)")
	f.StringVar(&extra, "context", "", "Extra context for the generated value")
	f.StringVar(&out, "out", "", "Write the document here instead of stdout")
	_ = cmd.MarkFlagRequired("form")
	_ = cmd.MarkFlagRequired("element")
	return cmd
}
