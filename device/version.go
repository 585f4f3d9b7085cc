package device

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a firmware API version of the eco manager-touch, e.g. "23.020". Versions are ordered numerically
// component by component, so "23.020" < "23.100" < "25.030".
type Version struct {
	parts []int
	text  string
}

var (
	V20_110 = MustParseVersion("20.110")
	V21_140 = MustParseVersion("21.140")
	V22_090 = MustParseVersion("22.090")
	V23_010 = MustParseVersion("23.010")
	V23_020 = MustParseVersion("23.020")
	V23_040 = MustParseVersion("23.040")
	V23_080 = MustParseVersion("23.080")
	V25_030 = MustParseVersion("25.030")
)

// Versions lists the API versions with a known register map, oldest first.
var Versions = []Version{V20_110, V21_140, V22_090, V23_010, V23_020, V23_040, V23_080, V25_030}

// ParseVersion parses a dotted numeric version.
func ParseVersion(text string) (Version, error) {
	text = strings.TrimPrefix(strings.TrimSpace(text), "v")
	if text == "" {
		return Version{}, fmt.Errorf("empty version")
	}

	fields := strings.Split(text, ".")
	parts := make([]int, len(fields))
	for i, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("parse version '%s': invalid component '%s'", text, field)
		}
		parts[i] = n
	}
	return Version{parts: parts, text: text}, nil
}

// MustParseVersion is like ParseVersion but panics on error. Used for the version table.
func MustParseVersion(text string) Version {
	v, err := ParseVersion(text)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	return v.text
}

// IsZero reports whether the version was never set.
func (v Version) IsZero() bool {
	return len(v.parts) == 0
}

// Compare returns -1, 0 or 1 depending on whether v is older than, equal to or newer than other.
// Missing trailing components count as zero.
func (v Version) Compare(other Version) int {
	n := len(v.parts)
	if len(other.parts) > n {
		n = len(other.parts)
	}
	for i := 0; i < n; i++ {
		a, b := 0, 0
		if i < len(v.parts) {
			a = v.parts[i]
		}
		if i < len(other.parts) {
			b = other.parts[i]
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

// AtLeast reports whether v is the same as or newer than other.
func (v Version) AtLeast(other Version) bool {
	return v.Compare(other) >= 0
}

// Known reports whether v is one of the versions with a known register map.
func (v Version) Known() bool {
	for _, known := range Versions {
		if v.Compare(known) == 0 {
			return true
		}
	}
	return false
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.text), nil
}

func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
