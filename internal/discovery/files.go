package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultInclude selects C and C++ headers and sources
var DefaultInclude = []string{
	"**/*.h", "**/*.hh", "**/*.hpp", "**/*.hxx",
	"**/*.cpp", "**/*.cc", "**/*.cxx",
}

// skipDirs are never descended into
var skipDirs = map[string]struct{}{
	"build":        {},
	"node_modules": {},
	"third_party":  {},
	"vendor":       {},
}

// pattern holds a compiled glob. Patterns starting with "**/" also get a
// root form so "**/*.h" matches "a.h" as well as "src/a.h".
type pattern struct {
	text string
	glob glob.Glob
	root glob.Glob
}

func compilePatterns(patterns []string) ([]pattern, error) {
	out := make([]pattern, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		cp := pattern{text: p, glob: g}
		if rest, ok := strings.CutPrefix(p, "**/"); ok {
			if cp.root, err = glob.Compile(rest, '/'); err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

func matchAny(rel string, patterns []pattern) bool {
	for _, p := range patterns {
		if p.glob.Match(rel) {
			return true
		}
		if p.root != nil && !strings.Contains(rel, "/") && p.root.Match(rel) {
			return true
		}
	}
	return false
}

// ValidatePatterns reports the first pattern that does not compile
func ValidatePatterns(patterns []string) error {
	_, err := compilePatterns(patterns)
	return err
}

// sourceFile is one file selected for parsing
type sourceFile struct {
	rel  string // slash-separated, relative to the root
	abs  string
	size int64
}

// discoverFiles walks root and returns the selected files sorted by path.
// Files over the size limit are returned separately.
func discoverFiles(root string, config *Config) (files []sourceFile, tooLarge []string, err error) {
	include, err := compilePatterns(config.Include)
	if err != nil {
		return nil, nil, err
	}
	exclude, err := compilePatterns(config.Exclude)
	if err != nil {
		return nil, nil, err
	}

	var gi *ignore.GitIgnore
	if config.RespectGitignore {
		gi = loadGitignore(root)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // unreadable entries are skipped
		}

		name := d.Name()
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if gi != nil && gi.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		if !matchAny(rel, include) || matchAny(rel, exclude) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if config.MaxFileSize > 0 && info.Size() > config.MaxFileSize {
			tooLarge = append(tooLarge, rel)
			return nil
		}
		files = append(files, sourceFile{rel: rel, abs: path, size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })
	sort.Strings(tooLarge)
	return files, tooLarge, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
