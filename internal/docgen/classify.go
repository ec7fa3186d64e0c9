package docgen

import (
	"regexp"
	"strings"
)

// Classification is the priority class of a repository path.
type Classification int

const (
	Unclassified Classification = iota
	Ignored
	Tier1 // manifests, root docs, CI
	Tier2 // entry points, routing, models, types
	Tier3 // generic source, last resort
)

func (c Classification) String() string {
	switch c {
	case Ignored:
		return "ignored"
	case Tier1:
		return "tier1"
	case Tier2:
		return "tier2"
	case Tier3:
		return "tier3"
	default:
		return "unclassified"
	}
}

// ignoredDirs are matched against whole path segments, case-sensitively.
var ignoredDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	".git":         true,
	".idea":        true,
	".vscode":      true,
	"__tests__":    true,
	"vendor":       true,
	"tmp":          true,
	"temp":         true,
}

// ignoredExtensions are matched against the lowercased path.
var ignoredExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".webp",
	".lock", ".pdf", ".mp4", ".mov", ".mp3",
	".map", ".min.js", ".min.css",
	".eot", ".ttf", ".woff", ".woff2",
	".jar", ".war", ".class", ".exe", ".dll", ".so", ".o",
	".ds_store",
}

type tierRule struct {
	tier     Classification
	patterns []*regexp.Regexp
	// lower matches against the lowercased path.
	lower bool
}

// tierRules is evaluated top to bottom; the first match wins.
var tierRules = []tierRule{
	{Tier1, compileAll(
		`^package\.json$`,
		`^go\.mod$`,
		`^Cargo\.toml$`,
		`^pom\.xml$`,
		`^requirements\.txt$`,
		`(?i)^dockerfile$`,
		`^docker-compose\.yml$`,
		`(?i)^readme\.md$`,
		`(?i)^contributing\.md$`,
		`^\.github/workflows/.*\.yml$`,
	), false},
	{Tier2, compileAll(
		`(^|/)src/(index|main|server)\.[a-z]+$`,
		`(^|/)app/(page|layout)\.[a-z]+$`,
		`(^|/)pages/_app\.[a-z]+$`,
		`(^|/)app/api/.*\.[a-z]+$`,
		`(^|/)routes?/`,
		`(^|/)controllers?/`,
		`(^|/)handlers?/`,
		`(^|/)prisma/schema\.prisma$`,
		`(^|/)models?/`,
		`types\.ts$`,
		`\.d\.ts$`,
	), true},
	{Tier3, compileAll(
		`\.(js|ts|py|go|rb|java)$`,
	), true},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// Classify assigns a '/'-separated repository-relative path to a tier.
// Tier 1 names are matched as written; directory and extension rules are
// matched against the lowercased path. It is total and deterministic.
func Classify(relPath string) Classification {
	if isIgnored(relPath) {
		return Ignored
	}
	lower := strings.ToLower(relPath)
	for _, rule := range tierRules {
		p := relPath
		if rule.lower {
			p = lower
		}
		for _, re := range rule.patterns {
			if re.MatchString(p) {
				return rule.tier
			}
		}
	}
	return Unclassified
}

func isIgnored(relPath string) bool {
	lower := strings.ToLower(relPath)
	for _, ext := range ignoredExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return hasSegment(relPath, ignoredDirs)
}

func hasSegment(p string, names map[string]bool) bool {
	for _, seg := range strings.Split(p, "/") {
		if names[seg] {
			return true
		}
	}
	return false
}
