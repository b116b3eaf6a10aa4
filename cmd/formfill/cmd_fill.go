package main

import (
	"github.com/spf13/cobra"
)

func newFillCmd(a *app) *cobra.Command {
	var (
		ff       fillFlags
		form     string
		selector string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill an HTML form from free-form text",
		Example: "  formfill fill --form page.html --text notes.txt --out filled.html\n" +
			"  cat mail.txt | formfill fill --form page.html --text - --fields name,email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := readText(cmd, ff.text)
			if err != nil {
				return err
			}
			doc, err := loadDocument(form)
			if err != nil {
				return err
			}
			target, err := doc.Form(selector)
			if err != nil {
				return err
			}
			p, err := a.newProvider()
			if err != nil {
				return err
			}
			filler, err := a.newFiller(p, &ff)
			if err != nil {
				return err
			}

			res, err := filler.FillFromText(cmd.Context(), target, text)
			if err != nil {
				return err
			}
			printResult(cmd.ErrOrStderr(), res)
			return writeDocument(cmd, doc, out)
		},
	}
	ff.register(cmd)
	f := cmd.Flags()
	f.StringVar(&form, "form", "", "HTML file holding the form (required)")
	f.StringVar(&selector, "selector", "", "Form selector (#id, form[name=x], form:N); first form when empty")
	f.StringVar(&out, "out", "", "Write the filled document here instead of stdout")
	_ = cmd.MarkFlagRequired("form")
	return cmd
}
