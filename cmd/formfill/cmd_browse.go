package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formfill/internal/logging"
	"github.com/goliatone/go-formfill/pkg/browser"
	"github.com/goliatone/go-formfill/pkg/dom"
)

func newBrowseCmd(a *app) *cobra.Command {
	var (
		ff       fillFlags
		url      string
		selector string
		headless bool
		execPath string
		timeout  time.Duration
		hold     time.Duration
	)
	cmd := &cobra.Command{
		Use:     "browse",
		Short:   "Fill a form on a live page through Chrome",
		Example: "  formfill browse --url http://localhost:8080/signup --text notes.txt --headless=false --hold 30s",
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := readText(cmd, ff.text)
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

			ctx := cmd.Context()
			session, err := browser.Open(ctx, url,
				browser.WithHeadless(headless),
				browser.WithExecPath(execPath),
				browser.WithTimeout(timeout),
				browser.WithLogger(logging.Component("browser", a.cfg.Debug.Fill)),
			)
			if err != nil {
				return err
			}
			defer session.Close()

			markup, err := session.FormHTML(ctx, selector)
			if err != nil {
				return err
			}
			doc, err := dom.ParseString(markup)
			if err != nil {
				return err
			}
			form, err := doc.Form("")
			if err != nil {
				return err
			}
			recorder := dom.NewRecorder(doc)

			res, err := filler.FillFromText(ctx, form, text)
			if err != nil {
				return err
			}
			if err := session.Replay(ctx, recorder.Events()); err != nil {
				return err
			}
			printResult(cmd.ErrOrStderr(), res)

			if hold > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(hold):
				}
			}
			return nil
		},
	}
	ff.register(cmd)
	f := cmd.Flags()
	f.StringVar(&url, "url", "", "Page URL (required)")
	f.StringVar(&selector, "selector", "form", "CSS selector of the form on the page")
	f.BoolVar(&headless, "headless", true, "Run Chrome headless")
	f.StringVar(&execPath, "exec-path", "", "Chrome/Chromium binary")
	f.DurationVar(&timeout, "timeout", 30*time.Second, "Page load timeout")
	f.DurationVar(&hold, "hold", 0, "Keep the browser open this long after filling")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}
