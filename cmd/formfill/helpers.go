package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formfill/pkg/dom"
	"github.com/goliatone/go-formfill/pkg/orchestrator"
	"github.com/goliatone/go-formfill/pkg/prompt"
	"github.com/goliatone/go-formfill/pkg/provider"
	"github.com/goliatone/go-formfill/pkg/review"
	"github.com/goliatone/go-formfill/pkg/sanitize"
)

// fillFlags are shared by the commands that extract values from text.
type fillFlags struct {
	text     string
	fields   []string
	review   bool
	raw      bool
	template string
}

func (f *fillFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.text, "text", "", "Source text file, or - for stdin (required)")
	flags.StringSliceVar(&f.fields, "fields", nil, "Only fill these field identifiers")
	flags.BoolVar(&f.review, "review", false, "Review extracted values interactively before writing")
	flags.BoolVar(&f.raw, "raw", false, "Send the source text without stripping markup")
	flags.StringVar(&f.template, "template", "", "pongo2 template file for the extraction prompt")
	_ = cmd.MarkFlagRequired("text")
}

func (a *app) newProvider() (provider.Provider, error) {
	return provider.New(a.cfg.ActiveProvider, a.cfg)
}

func (a *app) newFiller(p provider.Provider, ff *fillFlags) (*orchestrator.Filler, error) {
	opts := []orchestrator.Option{
		orchestrator.WithDebug(a.cfg.Debug.Fill),
		orchestrator.WithModel(a.v.GetString("model")),
	}
	if ff != nil {
		opts = append(opts, orchestrator.WithFields(ff.fields...))
		if !ff.raw {
			opts = append(opts, orchestrator.WithSanitizer(sanitize.Text))
		}
		if ff.review {
			opts = append(opts, orchestrator.WithReviewer(review.New()))
		}
		if ff.template != "" {
			engine, err := prompt.NewEngine(prompt.WithBaseDir(filepath.Dir(ff.template)))
			if err != nil {
				return nil, err
			}
			opts = append(opts, orchestrator.WithPromptTemplate(engine, filepath.Base(ff.template)))
		}
	}
	return orchestrator.New(p, opts...), nil
}

// readText reads path, or stdin when path is "-".
func readText(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("read text: %s is empty", path)
	}
	return text, nil
}

func loadDocument(path string) (*dom.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open form: %w", err)
	}
	defer f.Close()
	return dom.Parse(f)
}

// writeDocument renders doc to path, or to the command output when path is
// empty.
func writeDocument(cmd *cobra.Command, doc *dom.Document, path string) error {
	if path == "" {
		return doc.Render(cmd.OutOrStdout())
	}
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write form: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Form written to %s\n", path)
	return nil
}

// printResult renders a fill summary table.
func printResult(w io.Writer, res orchestrator.Result) {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Field", "Outcome", "Value"})
	for _, id := range res.Applied {
		t.AppendRow(table.Row{id, "written", res.Values[id]})
	}
	for _, id := range res.Values.Keys() {
		if reason, ok := res.Skipped[id]; ok {
			t.AppendRow(table.Row{id, "skipped: " + reason, res.Values[id]})
		}
	}
	t.AppendFooter(table.Row{"Status", string(res.Status), ""})
	fmt.Fprintln(w, t.Render())
}
