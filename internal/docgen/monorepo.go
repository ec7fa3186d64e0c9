package docgen

import "strings"

// manifestNames are the files that mark a project root.
var manifestNames = map[string]bool{
	"package.json":     true,
	"go.mod":           true,
	"Cargo.toml":       true,
	"pom.xml":          true,
	"requirements.txt": true,
	"composer.json":    true,
	"mix.exs":          true,
}

var nodeModules = map[string]bool{"node_modules": true}

// DetectMonorepo reports every non-root directory holding a manifest.
// Directories under node_modules and dot-prefixed directories are skipped;
// vendor directories are not.
func DetectMonorepo(paths []string) MonorepoAnalysis {
	res := MonorepoAnalysis{Candidates: []string{}}
	seen := make(map[string]bool)

	for _, p := range paths {
		dir, file := splitDir(p)
		if !manifestNames[file] {
			continue
		}
		if dir == "" {
			res.RootHasManifest = true
			continue
		}
		if strings.HasPrefix(dir, ".") || hasSegment(dir, nodeModules) {
			continue
		}
		if !seen[dir] {
			seen[dir] = true
			res.Candidates = append(res.Candidates, dir)
		}
	}

	res.IsMonorepo = len(res.Candidates) > 0
	return res
}

func splitDir(p string) (dir, file string) {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return "", p
	}
	return p[:i], p[i+1:]
}
