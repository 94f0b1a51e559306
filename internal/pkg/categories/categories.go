package categories

import (
	"errors"
	"fmt"
	"strings"
)

// Category identifies a market family on the sportsbook, by its URL slug.
type Category string

const (
	BatterProps  Category = "batter-props"
	PitcherProps Category = "pitcher-props"
)

// ErrUnknownCategory is returned for a category that is not registered.
// It surfaces as a startup failure when the configured categories are
// validated.
var ErrUnknownCategory = errors.New("unknown category")

// subcategories maps each category to its subcategory slugs, in collection
// order. The registry is fixed at build time.
var subcategories = map[Category][]string{
	BatterProps: {
		"home-runs",
		"hits",
		"total-bases",
		"rbis",
		"runs-scored",
		"hits-+-runs-+-rbis",
		"stolen-bases",
		"strikeouts",
		"singles",
		"doubles",
		"walks",
	},
	PitcherProps: {
		"strikeouts-thrown",
		"outs-recorded",
		"hits-allowed",
		"earned-runs-allowed",
		"walks-allowed",
	},
}

// All returns the registered categories in declaration order.
func All() []Category {
	return []Category{BatterProps, PitcherProps}
}

// Subcategories returns the ordered subcategory slugs for a category. The
// returned slice is a copy; callers may not mutate the registry.
func Subcategories(c Category) ([]string, error) {
	subs, ok := subcategories[c]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
	}
	out := make([]string, len(subs))
	copy(out, subs)
	return out, nil
}

// Parse validates a category slug from config or CLI input.
func Parse(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := subcategories[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// IsValid checks if the category is registered.
func (c Category) IsValid() bool {
	_, ok := subcategories[c]
	return ok
}

// String returns the URL slug.
func (c Category) String() string {
	return string(c)
}

// Underscored converts a URL slug to its output form,
// e.g. "batter-props" -> "batter_props".
func Underscored(slug string) string {
	return strings.ReplaceAll(slug, "-", "_")
}
