package docgen

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// RendererConfig controls how documents are laid out and written.
type RendererConfig struct {
	Format    string // "raw-md", "hugo", or "docusaurus"
	OutputDir string // root output directory
	SiteTitle string
}

// DefaultRendererConfig returns a RendererConfig with sensible defaults.
func DefaultRendererConfig() RendererConfig {
	return RendererConfig{
		Format:    "raw-md",
		OutputDir: "docs",
		SiteTitle: "Project Docs",
	}
}

// Layout returns the files a format produces for documents, with paths
// relative to the output directory.
func Layout(documents []Document, cfg RendererConfig) ([]Document, error) {
	if cfg.SiteTitle == "" {
		cfg.SiteTitle = DefaultRendererConfig().SiteTitle
	}
	switch cfg.Format {
	case "raw-md", "":
		return documents, nil
	case "hugo":
		return layoutHugo(documents, cfg), nil
	case "docusaurus":
		return layoutDocusaurus(documents, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported render format: %s", cfg.Format)
	}
}

// Render writes the laid-out documents under cfg.OutputDir.
func Render(documents []Document, cfg RendererConfig) error {
	files, err := Layout(documents, cfg)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := writeDoc(filepath.Join(cfg.OutputDir, filepath.FromSlash(f.Path)), f.Content); err != nil {
			return err
		}
	}
	return nil
}

// layoutHugo puts documents with YAML front matter under content/ and adds
// a config.toml.
func layoutHugo(documents []Document, cfg RendererConfig) []Document {
	var out []Document
	for i, doc := range documents {
		frontMatter := fmt.Sprintf("---\ntitle: %q\nweight: %d\n---\n\n", doc.Title, i+1)
		out = append(out, Document{
			Path:    path.Join("content", doc.Path),
			Title:   doc.Title,
			Content: frontMatter + doc.Content,
		})
	}

	configContent := fmt.Sprintf(`baseURL = "/"
languageCode = "en-us"
title = %q
theme = "hugo-book"
`, cfg.SiteTitle)
	return append(out, Document{Path: "config.toml", Content: configContent})
}

// layoutDocusaurus puts documents with front matter under docs/ and adds a
// docusaurus.config.js.
func layoutDocusaurus(documents []Document, cfg RendererConfig) []Document {
	var out []Document
	for i, doc := range documents {
		frontMatter := fmt.Sprintf("---\nsidebar_position: %d\nsidebar_label: %q\n---\n\n", i+1, doc.Title)
		out = append(out, Document{
			Path:    path.Join("docs", doc.Path),
			Title:   doc.Title,
			Content: frontMatter + doc.Content,
		})
	}

	configContent := fmt.Sprintf(`// @ts-check

/** @type {import('@docusaurus/types').Config} */
const config = {
  title: %q,
  url: 'https://your-project-url.example.com',
  baseUrl: '/',
  themes: ['@docusaurus/theme-mermaid'],
  markdown: {
    mermaid: true,
  },
  presets: [
    [
      'classic',
      /** @type {import('@docusaurus/preset-classic').Options} */
      ({
        docs: {
          routeBasePath: '/',
        },
      }),
    ],
  ],
};

module.exports = config;
`, cfg.SiteTitle)
	return append(out, Document{Path: "docusaurus.config.js", Content: configContent})
}

// writeDoc creates parent directories and writes content to the given path.
func writeDoc(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
