// cmd/repodoc/analyze.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/julianshen/repodoc/internal/docgen"
	"github.com/julianshen/repodoc/internal/source"
)

type analyzeOptions struct {
	branch    string
	token     string
	withTree  bool
	selection bool
	scope     string
}

// analyzeReport is the structure step's output plus, optionally, the key
// files that would be selected.
type analyzeReport struct {
	Repository string `json:"repository"`
	Branch     string `json:"branch"`
	*docgen.Structure
	Selected []string `json:"selected_files,omitempty"`
}

func analyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze <repo-url>",
		Short: "Show a repository's structure and monorepo analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, true)
			if err != nil {
				return err
			}
			return a.runAnalyze(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.branch, "branch", "", "branch to list (default: repository default branch)")
	cmd.Flags().StringVar(&opts.token, "token", "", "personal access token for private repositories")
	cmd.Flags().BoolVar(&opts.withTree, "tree", false, "include the full tree listing")
	cmd.Flags().BoolVar(&opts.selection, "select", false, "also list the key files that would be documented")
	cmd.Flags().StringVar(&opts.scope, "scope", "", "sub-directory to select from (with --select)")

	return cmd
}

func (a *app) runAnalyze(ctx context.Context, rawURL string, opts analyzeOptions, w io.Writer) error {
	ref, err := source.ParseRepoURL(rawURL)
	if err != nil {
		return err
	}
	src, err := a.sources.For(ref)
	if err != nil {
		return err
	}

	branch, err := docgen.ResolveBranch(ctx, src, ref, opts.branch, opts.token)
	if err != nil {
		return err
	}
	st, err := docgen.Analyze(ctx, src, ref, branch, opts.token)
	if err != nil {
		return err
	}

	report := analyzeReport{Repository: ref.Host + "/" + ref.FullName(), Branch: branch, Structure: st}
	if opts.selection {
		report.Selected = docgen.SelectKeyFiles(st.Tree, opts.scope, docgen.ConfigFrom(a.cfg).Selection)
	}
	if !opts.withTree {
		st.Tree = nil
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding structure: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
