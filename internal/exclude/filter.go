// Package exclude implements the Exclusion Filter (spec §4.1): a
// glob-style, gitignore-syntax path filter applying default rules and
// user-supplied patterns, plus a dependency-scan mode that walks into
// otherwise-excluded directories to collect package-manifest files.
package exclude

import (
	"os"
	"path/filepath"
)

// Filter decides which files enter the indexing pipeline. Matching is
// deterministic and pure: ShouldExclude never depends on state mutated
// after construction (spec invariant 5, §8).
type Filter struct {
	defaults    *Matcher
	user        *Matcher
	useDefaults bool
}

// Options configures a Filter.
type Options struct {
	// UserPatterns are additional gitignore-syntax patterns supplied by
	// the caller, applied after the default rule set.
	UserPatterns []string

	// DefaultExclusions toggles the built-in exclusion rule set
	// (spec §6 option `default_exclusions`). Defaults to true.
	DefaultExclusions *bool

	// RespectGitignore causes .gitignore files found under Root to be
	// folded into the user pattern set.
	RespectGitignore bool
	Root             string
}

// NewFilter builds a Filter from Options.
func NewFilter(opts Options) *Filter {
	f := &Filter{
		defaults:    defaultMatcher(),
		user:        NewMatcher(),
		useDefaults: opts.DefaultExclusions == nil || *opts.DefaultExclusions,
	}
	for _, p := range opts.UserPatterns {
		f.user.AddPattern(p)
	}
	if opts.RespectGitignore && opts.Root != "" {
		f.loadGitignoreFiles(opts.Root)
	}
	return f
}

func (f *Filter) loadGitignoreFiles(root string) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if info.Name() != ".gitignore" {
			return nil
		}
		rel, relErr := filepath.Rel(root, filepath.Dir(path))
		if relErr != nil {
			return nil
		}
		if rel == "." {
			rel = ""
		}
		_ = f.user.AddFromFile(path, filepath.ToSlash(rel))
		return nil
	})
}

// ShouldExclude reports whether path (relative to the project root,
// forward-slash form) should be excluded from indexing. A path is
// excluded iff any default or user rule matches it (spec §4.1).
func (f *Filter) ShouldExclude(path string, isDir bool) bool {
	path = filepath.ToSlash(path)
	if f.useDefaults && f.defaults.Match(path, isDir) {
		return true
	}
	return f.user.Match(path, isDir)
}

// dependencyManifestNames are the package-manifest filenames recognised
// by dependency-scan mode regardless of exclusion (spec §4.1, SPEC_FULL §4.6.1).
var dependencyManifestNames = map[string]bool{
	"go.mod":            true,
	"go.sum":            true,
	"package.json":      true,
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"requirements.txt":  true,
	"Pipfile":           true,
	"Pipfile.lock":      true,
	"pyproject.toml":    true,
	"Gemfile":           true,
	"Gemfile.lock":      true,
	"Cargo.toml":        true,
	"Cargo.lock":        true,
}

// IsDependencyManifest reports whether base is a recognised
// package-manifest filename.
func IsDependencyManifest(base string) bool {
	return dependencyManifestNames[base]
}

// ScanDependencyFiles walks root, including directories normally
// excluded, and yields the relative paths of recognised manifest files.
// It never applies the exclusion rules to directory traversal or to the
// manifest files themselves, per spec §4.1.
func ScanDependencyFiles(root string) ([]string, error) {
	var found []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // best-effort scan, skip unreadable entries
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if IsDependencyManifest(info.Name()) {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return nil
			}
			found = append(found, filepath.ToSlash(rel))
		}
		return nil
	})
	return found, err
}

// defaultExcludeDirs are directories excluded by default: virtual
// environments, dependency caches, VCS directories, build outputs,
// editor metadata, compiled artefacts (spec §4.1).
var defaultExcludeDirs = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/.hg/**",
	"**/.svn/**",
	"**/vendor/**",
	"**/__pycache__/**",
	"**/.venv/**",
	"**/venv/**",
	"**/.tox/**",
	"**/site-packages/**",
	"**/dist/**",
	"**/build/**",
	"**/target/**",
	"**/.idea/**",
	"**/.vscode/**",
	"**/bin/**",
	"**/obj/**",
}

// defaultExcludeFiles are compiled/generated artefact file patterns
// excluded by default.
var defaultExcludeFiles = []string{
	"**/*.min.js",
	"**/*.min.css",
	"**/*.pyc",
	"**/*.pyo",
	"**/*.class",
	"**/*.o",
	"**/*.so",
	"**/*.dll",
	"**/*.exe",
	"**/.DS_Store",
	"**/package-lock.json",
	"**/yarn.lock",
	"**/pnpm-lock.yaml",
	"**/go.sum",
}

// defaultMatcher builds the compiled default rule set.
func defaultMatcher() *Matcher {
	m := NewMatcher()
	for _, p := range defaultExcludeDirs {
		m.AddPattern(p)
	}
	for _, p := range defaultExcludeFiles {
		m.AddPattern(p)
	}
	return m
}
