package listquery

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction selects ascending or descending order for the Sort helpers.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// collator is shared by all lexicographic comparisons. Und gives
// locale-neutral Unicode collation, which keeps mixed Latin/CJK listing
// fields in a stable, human-reasonable order. Collators carry internal
// buffers, so access is serialized.
var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Und)
)

// CompareStrings compares two strings with Unicode collation rather than
// byte order. Returns <0, 0 or >0.
func CompareStrings(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// ExtractNumber pulls the first numeric run out of a free-form display value
// such as "12%", "¥1,000" or "30% (小規模 15%)". Thousands separators inside
// the run are dropped. Returns false when the value holds no digits.
func ExtractNumber(value string) (float64, bool) {
	start := -1
	for i, r := range value {
		if r >= '0' && r <= '9' {
			start = i
			break
		}
	}
	if start == -1 {
		return 0, false
	}

	var b strings.Builder
	seenDot := false
loop:
	for _, r := range value[start:] {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',':
			// thousands separator, skip
		case r == '.' && !seenDot:
			seenDot = true
			b.WriteRune(r)
		default:
			break loop
		}
	}

	n, err := strconv.ParseFloat(strings.TrimSuffix(b.String(), "."), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// CompareNumeric compares two display values by their extracted numbers.
// Values without any number sort after values with one.
func CompareNumeric(a, b string) int {
	na, okA := ExtractNumber(a)
	nb, okB := ExtractNumber(b)

	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	case na < nb:
		return -1
	case na > nb:
		return 1
	default:
		return 0
	}
}

// ParseDate accepts the two timestamp shapes listing fields carry: full
// RFC 3339 or a bare calendar date. Returns the zero time on anything else.
func ParseDate(value string) time.Time {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t
	}
	return time.Time{}
}

// CompareTimes compares two timestamps. Zero times compare after real ones,
// so undated rows land at the end of an ascending sort; Sort's direction flip
// applies to them like any other value.
func CompareTimes(a, b time.Time) int {
	switch {
	case a.Equal(b):
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	case a.Before(b):
		return -1
	default:
		return 1
	}
}

// Sort orders items by the given comparison, flipping for Descending. The
// sort is stable so equal rows keep their incoming relative order.
func Sort[T any](items []T, dir Direction, cmp func(a, b T) int) {
	sort.SliceStable(items, func(i, j int) bool {
		c := cmp(items[i], items[j])
		if dir == Descending {
			return c > 0
		}
		return c < 0
	})
}
