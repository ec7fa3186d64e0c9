// cmd/repodoc/generate.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/julianshen/repodoc/internal/docgen"
	"github.com/julianshen/repodoc/internal/output"
	"github.com/julianshen/repodoc/internal/publish"
	"github.com/julianshen/repodoc/internal/source"
)

type generateOptions struct {
	branch    string
	scope     string
	token     string
	apiKey    string
	format    string
	render    string
	outputDir string
	publish   bool
	preview   bool
	noInput   bool
}

func generateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate <repo-url>",
		Short: "Generate documentation for a repository",
		Long: `Select the key files of a repository, fetch their contents, and ask the
configured generator for a README, tech stack and architecture diagram.
The documents are written to --output; a report goes to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, opts.noInput)
			if err != nil {
				return err
			}
			return a.runGenerate(cmd.Context(), args[0], opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.branch, "branch", "", "branch to document (default: repository default branch)")
	cmd.Flags().StringVar(&opts.scope, "scope", "", "sub-directory to document, e.g. packages/api")
	cmd.Flags().StringVar(&opts.token, "token", "", "personal access token for private repositories")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "generator API key (overrides config)")
	cmd.Flags().StringVar(&opts.format, "format", "markdown", "report format: json, yaml, markdown")
	cmd.Flags().StringVar(&opts.render, "render", "raw-md", "document layout: raw-md, hugo, docusaurus")
	cmd.Flags().StringVar(&opts.outputDir, "output", "docs", "output directory")
	cmd.Flags().BoolVar(&opts.publish, "publish", false, "upload the documents to the configured S3 bucket")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "render the README in the terminal")
	cmd.Flags().BoolVar(&opts.noInput, "no-input", false, "never prompt, even on a terminal")

	return cmd
}

func (a *app) runGenerate(ctx context.Context, rawURL string, opts generateOptions, stdout, stderr io.Writer) error {
	formatter, err := output.NewFormatter(opts.format)
	if err != nil {
		return err
	}

	ref, err := source.ParseRepoURL(rawURL)
	if err != nil {
		return err
	}
	src, err := a.sources.For(ref)
	if err != nil {
		return err
	}

	token := opts.token
	info, err := a.preflight(ctx, src, ref, &token)
	if err != nil {
		return err
	}

	branch := opts.branch
	if branch == "" {
		branch = ref.Branch
	}
	if branch == "" {
		branch = info.DefaultBranch
	}

	scope := opts.scope
	if scope == "" && a.interactive {
		st, err := docgen.Analyze(ctx, src, ref, branch, token)
		if err != nil {
			return fmt.Errorf("analyzing structure: %w", err)
		}
		if st.Monorepo.IsMonorepo {
			if scope, err = promptScope(st.Monorepo); err != nil {
				return err
			}
		}
	}

	llm, name, err := a.newGenerator(ctx, opts.apiKey)
	if err != nil {
		return err
	}

	p := &docgen.Pipeline{Source: src, LLM: llm, Config: docgen.ConfigFrom(a.cfg), Out: stderr}
	var bar *progressBar
	if a.interactive {
		bar = newProgressBar(stderr)
		p.OnBatch = bar.onBatch
	}

	res, err := p.Run(ctx, docgen.Request{Ref: ref, Branch: branch, Scope: scope, Token: token})
	bar.finish()
	if err != nil {
		return err
	}

	report := output.NewReport(res, name)
	if !res.Empty {
		rcfg := docgen.RendererConfig{Format: opts.render, OutputDir: opts.outputDir, SiteTitle: res.DocSet.ProjectName}
		if err := docgen.Render(res.Documents, rcfg); err != nil {
			return fmt.Errorf("writing documents: %w", err)
		}
		fmt.Fprintf(stderr, "repodoc: wrote %d documents to %s\n", len(res.Documents), opts.outputDir)

		if opts.publish {
			report.Published, err = a.publish(ctx, res.Documents, rcfg)
			if err != nil {
				return err
			}
		}
		if opts.preview {
			rendered, err := renderPreview(res.DocSet.ReadmeMarkdown, previewWidth)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, rendered)
		}
	} else {
		fmt.Fprintln(stderr, "repodoc: no key files found; nothing to document")
	}

	if a.interactive {
		fmt.Fprintln(stderr, renderSummary(report))
	}

	data, err := formatter.Format(report)
	if err != nil {
		return fmt.Errorf("formatting report: %w", err)
	}
	_, err = stdout.Write(data)
	return err
}

// preflight checks the repository is reachable. On a terminal, a private
// repository prompts for a token and the check is retried with it.
func (a *app) preflight(ctx context.Context, src source.Source, ref source.RepoRef, token *string) (*source.RepoInfo, error) {
	lookup := func() (*source.RepoInfo, error) {
		var info *source.RepoInfo
		err := withSpinner(ctx, a.interactive, "Checking "+ref.FullName()+"...", func() error {
			var err error
			info, err = src.RepoInfo(ctx, ref, *token)
			return err
		})
		return info, err
	}

	info, err := lookup()
	if !errors.Is(err, source.ErrAuthRequired) || !a.interactive {
		return info, err
	}

	entered, perr := promptToken(ref)
	if perr != nil {
		return nil, perr
	}
	if entered == "" {
		return nil, err
	}
	*token = entered
	return lookup()
}

func (a *app) publish(ctx context.Context, documents []docgen.Document, rcfg docgen.RendererConfig) ([]string, error) {
	files, err := docgen.Layout(documents, rcfg)
	if err != nil {
		return nil, err
	}
	pub, err := publish.NewS3PublisherFromConfig(a.cfg.Publish.S3)
	if err != nil {
		return nil, fmt.Errorf("configuring publisher: %w", err)
	}
	urls, err := pub.Publish(ctx, uuid.NewString(), files)
	if err != nil {
		return nil, fmt.Errorf("publishing documents: %w", err)
	}
	return urls, nil
}
