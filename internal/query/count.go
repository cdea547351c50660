package query

import (
	"context"
	"regexp"
	"strings"

	"github.com/vinodismyname/xlquery/internal/cells"
	"github.com/vinodismyname/xlquery/internal/workbooks"
	"github.com/vinodismyname/xlquery/pkg/mcperr"
)

// CountOccurrences scans every non-empty cell, header row included, as text.
// With UseRegex the result is the total of non-overlapping matches across all
// cells; otherwise it is the number of cells containing Keyword
// (case-sensitive), each cell counted at most once.
func (e *Engine) CountOccurrences(ctx context.Context, in CountInput) (int, error) {
	count := 0
	err := e.withSheet(ctx, in, in.Path, in.Sheet, func(sh *workbooks.Sheet) error {
		match, err := matcher(in.Keyword, in.UseRegex)
		if err != nil {
			return err
		}
		for r := 0; r <= sh.LastRowIndex(); r++ {
			for _, c := range sh.Row(r) {
				if c.IsEmpty() {
					continue
				}
				count += match(cells.StringOf(c))
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func matcher(keyword string, useRegex bool) (func(string) int, error) {
	if !useRegex {
		return func(s string) int {
			if strings.Contains(s, keyword) {
				return 1
			}
			return 0
		}, nil
	}
	re, err := regexp.Compile(keyword)
	if err != nil {
		return nil, mcperr.Wrapf(mcperr.PatternError, err, "invalid pattern %q", keyword)
	}
	return func(s string) int {
		return len(re.FindAllStringIndex(s, -1))
	}, nil
}
