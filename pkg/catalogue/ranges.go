package catalogue

import (
	"strconv"
	"strings"

	"github.com/jwebster45206/story-crafter/pkg/generr"
	"github.com/jwebster45206/story-crafter/pkg/rangetable"
)

// ParseRange expands a range expression such as "1-4, 27" into the roll
// values it names, in order. An empty expression owns nothing.
// Domain bounds are checked when the table is built, except that a span
// may not end past rangetable.StandardDomain.
func ParseRange(expr string) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	var out []int
	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, badRange(expr, "empty element")
		}

		lo, hi, isSpan := strings.Cut(part, "-")
		first, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, badRange(expr, "%q is not a number", lo)
		}
		last := first
		if isSpan {
			last, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, badRange(expr, "%q is not a number", hi)
			}
			if last < first {
				return nil, badRange(expr, "span %d-%d runs backwards", first, last)
			}
			if last > rangetable.StandardDomain {
				return nil, generr.Newf(generr.CodeRangeOutOfDomain, "range %q: span %d-%d ends past %d", expr, first, last, rangetable.StandardDomain)
			}
		}
		for v := first; v <= last; v++ {
			out = append(out, v)
		}
	}
	return out, nil
}

// FormatRange renders values back into the compact form ParseRange reads.
// values must be sorted.
func FormatRange(values []int) string {
	var b strings.Builder
	for i := 0; i < len(values); {
		j := i
		for j+1 < len(values) && values[j+1] == values[j]+1 {
			j++
		}
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(values[i]))
		if j > i {
			b.WriteByte('-')
			b.WriteString(strconv.Itoa(values[j]))
		}
		i = j + 1
	}
	return b.String()
}

func badRange(expr, format string, args ...any) *generr.Error {
	return generr.Newf(generr.CodeInvalidCatalogueEntry, "range %q: "+format, append([]any{expr}, args...)...)
}
