// File: twconfig/content.go
package twconfig

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// PatternMatch records the files one content pattern matched.
type PatternMatch struct {
	Pattern string
	Negated bool
	Files   []string // relative to the report root, slash-separated, sorted
}

// ContentReport is the result of expanding the content patterns under a root.
type ContentReport struct {
	Root     string
	Patterns []PatternMatch
	Files    []string // union of positive matches minus negated matches
}

// Unmatched returns the positive patterns that matched no file. The CSS build
// would silently emit nothing for those sources.
func (r *ContentReport) Unmatched() []string {
	var out []string
	for _, p := range r.Patterns {
		if !p.Negated && len(p.Files) == 0 {
			out = append(out, p.Pattern)
		}
	}
	return out
}

// ResolveContent expands the content patterns relative to root. Patterns
// starting with "!" exclude files. Only file names are matched; file contents
// are never read.
func (c *BuildConfig) ResolveContent(ctx context.Context, root string) (*ContentReport, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve content root '%s': %w", root, err)
	}

	matches := make([]PatternMatch, len(c.Content))
	g, ctx := errgroup.WithContext(ctx)

	for i, pattern := range c.Content {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			negated := strings.HasPrefix(pattern, "!")
			rel := filepath.FromSlash(strings.TrimPrefix(pattern, "!"))
			full := rel
			if !filepath.IsAbs(rel) {
				full = filepath.Join(absRoot, rel)
			}

			found, err := doublestar.FilepathGlob(full, doublestar.WithFilesOnly())
			if err != nil {
				return fmt.Errorf("expand content pattern %q: %w", pattern, err)
			}

			files := make([]string, 0, len(found))
			for _, f := range found {
				r, err := filepath.Rel(absRoot, f)
				if err != nil {
					r = f
				}
				files = append(files, filepath.ToSlash(r))
			}
			sort.Strings(files)

			matches[i] = PatternMatch{Pattern: pattern, Negated: negated, Files: files}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	included := make(map[string]bool)
	excluded := make(map[string]bool)
	for _, m := range matches {
		for _, f := range m.Files {
			if m.Negated {
				excluded[f] = true
			} else {
				included[f] = true
			}
		}
	}

	files := make([]string, 0, len(included))
	for f := range included {
		if !excluded[f] {
			files = append(files, f)
		}
	}
	sort.Strings(files)

	return &ContentReport{Root: absRoot, Patterns: matches, Files: files}, nil
}
