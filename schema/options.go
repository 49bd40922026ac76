package schema

import (
	"context"
	"golang.org/x/text/cases"
	"searchdsl/util"
	"strings"
)

// StaticOptions offers a fixed list of values as suggestions. Matching is case-insensitive.
type StaticOptions struct {
	values []string
	folded []string
}

// NewStaticOptions creates options from the given values. The values are sorted naturally and duplicates are removed.
func NewStaticOptions(values ...string) *StaticOptions {
	fold := cases.Fold()
	options := &StaticOptions{}

	var previous string
	for i, value := range util.SortNatural(values) {
		if i > 0 && value == previous {
			continue
		}
		previous = value
		options.values = append(options.values, value)
		options.folded = append(options.folded, fold.String(value))
	}

	return options
}

func (o *StaticOptions) Values() []string {
	return append([]string{}, o.values...)
}

func (o *StaticOptions) Suggestions(ctx context.Context, search string, offset int, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	search = cases.Fold().String(search)

	var result []string
	skipped := 0
	for i, value := range o.values {
		if limit >= 0 && len(result) >= limit {
			break
		}
		if !strings.Contains(o.folded[i], search) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		result = append(result, value)
	}

	return result, nil
}
