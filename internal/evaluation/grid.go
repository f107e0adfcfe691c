package evaluation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// ParamGrid maps a hyperparameter name to its candidate values.
type ParamGrid map[string][]any

// Params is one combination drawn from a ParamGrid.
type Params map[string]any

func (g ParamGrid) Names() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size is the number of combinations in the Cartesian product.
func (g ParamGrid) Size() int {
	if len(g) == 0 {
		return 0
	}
	size := 1
	for _, values := range g {
		size *= len(values)
	}
	return size
}

func (g ParamGrid) Validate() error {
	if len(g) == 0 {
		return ErrEmptyGrid
	}
	for _, name := range g.Names() {
		if len(g[name]) == 0 {
			return fmt.Errorf("%w: no candidates for %q", ErrEmptyGrid, name)
		}
	}
	return nil
}

// Combinations enumerates the full Cartesian product. Names are visited in
// sorted order and the last name varies fastest.
func (g ParamGrid) Combinations() ([]Params, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	names := g.Names()
	counter := make([]int, len(names))
	combos := make([]Params, 0, g.Size())

	for {
		combo := make(Params, len(names))
		for i, name := range names {
			combo[name] = g[name][counter[i]]
		}
		combos = append(combos, combo)

		pos := len(names) - 1
		for pos >= 0 {
			counter[pos]++
			if counter[pos] < len(g[names[pos]]) {
				break
			}
			counter[pos] = 0
			pos--
		}
		if pos < 0 {
			return combos, nil
		}
	}
}

// Key renders the combination as "{name: value, ...}" with sorted names.
func (p Params) Key() string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + formatValue(p[name])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return "'" + s + "'"
	}
	if v == nil {
		return "None"
	}
	switch f := v.(type) {
	case float64:
		return formatFloat(f, 64)
	case float32:
		return formatFloat(float64(f), 32)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return s
}

// formatFloat keeps whole floats distinguishable from ints: 1.0 renders as
// "1.0", never "1".
func formatFloat(f float64, bitSize int) string {
	s := strconv.FormatFloat(f, 'g', -1, bitSize)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}
