package version

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/user/docker-version-fetcher/pkg/errors"
)

// Key is the comparable form of a tag string. It is derived deterministically
// from the tag text and is never serialized.
type Key struct {
	components []component
	suffix     string
	hasSuffix  bool
}

type component struct {
	text    string
	number  int
	numeric bool
}

// ParseKey derives a comparison key from a tag string. A single leading "v"
// is stripped, the first "-" separates the main segment from a variant suffix
// ("1.2.3-alpine" -> main "1.2.3", suffix "alpine"), and the main segment is
// split on "." into numeric or textual components.
func ParseKey(tag string) (Key, error) {
	if tag == "" {
		return Key{}, errors.New("version.ParseKey", "empty tag")
	}

	trimmed := strings.TrimPrefix(tag, "v")
	main := trimmed

	var key Key
	if idx := strings.Index(trimmed, "-"); idx >= 0 {
		main = trimmed[:idx]
		key.suffix = trimmed[idx+1:]
		key.hasSuffix = true
	}

	if main == "" {
		return Key{}, errors.Newf("version.ParseKey", "tag %q has no main segment", tag)
	}

	for _, part := range strings.Split(main, ".") {
		c := component{text: part}
		if isAllDigits(part) {
			n, err := strconv.Atoi(part)
			if err != nil {
				return Key{}, errors.Wrapf("version.ParseKey", err, "component %q of tag %q", part, tag)
			}
			c.number = n
			c.numeric = true
		}
		key.components = append(key.components, c)
	}

	return key, nil
}

// Compare defines a best-effort total order over tag strings and returns
// -1, 0 or 1. Identical strings compare equal without parsing. If either tag
// fails to parse the comparison degrades to plain lexicographic order on the
// raw strings, which is logged as a warning and never treated as fatal.
func Compare(a, b string) int {
	if a == b {
		return 0
	}

	keyA, errA := ParseKey(a)
	keyB, errB := ParseKey(b)
	if errA != nil || errB != nil {
		slog.Warn("Tag comparison degraded to lexicographic order", "a", a, "b", b)
		return sign(strings.Compare(a, b))
	}

	return keyA.Compare(keyB)
}

// Compare orders two keys component-wise, left to right.
func (k Key) Compare(other Key) int {
	common := len(k.components)
	if len(other.components) < common {
		common = len(other.components)
	}

	for i := 0; i < common; i++ {
		if c := compareComponent(k.components[i], other.components[i]); c != 0 {
			return c
		}
	}

	// A key with strictly more components ranks greater ("1.2" < "1.2.0").
	if len(k.components) != len(other.components) {
		if len(k.components) > len(other.components) {
			return 1
		}
		return -1
	}

	// A suffixed tag ranks below the bare main version ("2.29.0-alpine" < "2.29.0").
	switch {
	case k.hasSuffix && !other.hasSuffix:
		return -1
	case !k.hasSuffix && other.hasSuffix:
		return 1
	}

	return sign(strings.Compare(k.suffix, other.suffix))
}

// compareComponent compares a single component pair. Numeric components use
// integer comparison. Mixed alphanumeric components compare by their leading
// digit run when both sides have one, otherwise the original component text
// is compared lexicographically.
func compareComponent(a, b component) int {
	if a.numeric && b.numeric {
		switch {
		case a.number > b.number:
			return 1
		case a.number < b.number:
			return -1
		}
		return 0
	}

	numA, okA := leadingNumber(a.text)
	numB, okB := leadingNumber(b.text)
	if okA && okB && numA != numB {
		if numA > numB {
			return 1
		}
		return -1
	}

	return sign(strings.Compare(a.text, b.text))
}

// SortDescending returns a copy of the tags ordered newest first.
func SortDescending(tags []string) []string {
	sorted := make([]string, len(tags))
	copy(sorted, tags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Compare(sorted[i], sorted[j]) > 0
	})
	return sorted
}

// leadingNumber extracts the leading run of digits from a component.
func leadingNumber(s string) (int, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, false
	}
	return n, true
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
