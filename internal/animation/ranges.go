package animation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Tokens are single indices ("7") or half-open ranges ("0-10" is 0..9) separated by
// single spaces.
var rangePattern = regexp.MustCompile(`^(?:\d+(?:-\d+)?(?: |$))+$`)

// LEDSet is a deduplicated set of LED indices.
type LEDSet struct {
	members map[int]struct{}
	sorted  []int
}

// ParseLEDSet parses a range expression such as "0", "0-10 20-30" or "10-35".
func ParseLEDSet(expr string) (LEDSet, error) {
	expr = strings.TrimSpace(expr)
	if !rangePattern.MatchString(expr) {
		return LEDSet{}, invalid("leds", fmt.Sprintf("%q must be LED indices or ranges like '1-10' separated by spaces", expr))
	}

	members := make(map[int]struct{})
	for _, token := range strings.Fields(expr) {
		lo, hi, isRange := strings.Cut(token, "-")
		a, err := strconv.Atoi(lo)
		if err != nil {
			return LEDSet{}, invalid("leds", fmt.Sprintf("index %q: %v", lo, err))
		}
		if a < 0 {
			return LEDSet{}, invalid("leds", fmt.Sprintf("index %d must not be negative", a))
		}
		if !isRange {
			members[a] = struct{}{}
			continue
		}
		b, err := strconv.Atoi(hi)
		if err != nil {
			return LEDSet{}, invalid("leds", fmt.Sprintf("index %q: %v", hi, err))
		}
		if b <= a {
			return LEDSet{}, invalid("leds", fmt.Sprintf("range %q must have its first index smaller than the second; use %q for a single LED", token, lo))
		}
		for i := a; i < b; i++ {
			members[i] = struct{}{}
		}
	}

	sorted := make([]int, 0, len(members))
	for i := range members {
		sorted = append(sorted, i)
	}
	sort.Ints(sorted)
	return LEDSet{members: members, sorted: sorted}, nil
}

func (s LEDSet) Has(index int) bool {
	_, ok := s.members[index]
	return ok
}

func (s LEDSet) Len() int { return len(s.sorted) }

// Indices returns the members in ascending order.
func (s LEDSet) Indices() []int {
	return append([]int(nil), s.sorted...)
}

// String renders the set back as a compact range expression.
func (s LEDSet) String() string {
	var b strings.Builder
	for i := 0; i < len(s.sorted); {
		j := i
		for j+1 < len(s.sorted) && s.sorted[j+1] == s.sorted[j]+1 {
			j++
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		if j == i {
			b.WriteString(strconv.Itoa(s.sorted[i]))
		} else {
			fmt.Fprintf(&b, "%d-%d", s.sorted[i], s.sorted[j]+1)
		}
		i = j + 1
	}
	return b.String()
}
