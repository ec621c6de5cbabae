// Package deployignore excludes files from the build archive based on a gitignore-style
// .deployignore file placed at the root of the build directory.
package deployignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/rs/zerolog/log"
)

// FileName is the name of the ignore file looked up in the build directory.
const FileName = ".deployignore"

const commentPrefix = "#"

// Pattern defines a single deployignore pattern.
type Pattern struct {
	P string
}

// NewPattern create new Pattern.
func NewPattern(p string) Pattern {
	return Pattern{P: p}
}

// PatternsFromFile reads the ignore file at path and returns its patterns.
// A missing file is not an error and yields no patterns. The ignore file itself is
// always excluded when present.
func PatternsFromFile(path string) ([]Pattern, error) {
	if path == "" {
		return []Pattern{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("path", path).Msg("No ignore file found, archiving everything.")
			return []Pattern{}, nil
		}
		return []Pattern{}, err
	}
	defer f.Close()

	ps := []Pattern{NewPattern("/" + filepath.Base(path))}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		s := scanner.Text()
		if !strings.HasPrefix(s, commentPrefix) && len(strings.TrimSpace(s)) > 0 {
			ps = append(ps, NewPattern(s))
		}
	}

	return ps, scanner.Err()
}

// Matcher defines matcher for deployignore patterns.
type Matcher interface {
	Match(path []string, isDir bool) bool
}

type matcher struct {
	matcher gitignore.Matcher
}

// Match matches patterns.
func (m *matcher) Match(path []string, isDir bool) bool {
	return m.matcher.Match(path, isDir)
}

// NewMatcher constructs a new matcher.
func NewMatcher(ps []Pattern) Matcher {
	gps := make([]gitignore.Pattern, len(ps))
	for i, p := range ps {
		gps[i] = gitignore.ParsePattern(p.P, nil)
	}

	return &matcher{matcher: gitignore.NewMatcher(gps)}
}

// NewMatcherFromFile constructs a new matcher from file.
func NewMatcherFromFile(path string) (Matcher, error) {
	ps, err := PatternsFromFile(path)
	if err != nil {
		return nil, err
	}

	return NewMatcher(ps), nil
}

// ForDir returns the matcher for the ignore file at the root of dir.
func ForDir(dir string) (Matcher, error) {
	return NewMatcherFromFile(filepath.Join(dir, FileName))
}

type globMatcher struct {
	next  Matcher
	globs []string
}

// WithGlobs extends m with doublestar glob patterns (e.g. "**/*.map") that are matched against the
// slash-separated path relative to the build directory. m may be nil.
func WithGlobs(m Matcher, globs []string) Matcher {
	if len(globs) == 0 && m != nil {
		return m
	}
	return &globMatcher{next: m, globs: globs}
}

// Match reports whether path is excluded by the wrapped matcher or by any of the globs.
func (g *globMatcher) Match(path []string, isDir bool) bool {
	if g.next != nil && g.next.Match(path, isDir) {
		return true
	}

	rel := strings.Join(path, "/")
	for _, p := range g.globs {
		ok, err := doublestar.Match(p, rel)
		if err != nil {
			log.Warn().Err(err).Str("pattern", p).Msg("Invalid exclude pattern, ignoring it.")
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
