package fatimg

import (
	"strings"
)

// maxShortNameLength is 8 name characters, the dot and 3 extension characters.
const maxShortNameLength = 12

// IsValidShortName reports whether name may be compared against 8.3 names.
// It must not start with a space and must not contain control characters,
// '"', any of "*+,/:;<=>?", "[\]" or '|'.
func IsValidShortName(name string) bool {
	if name == "" || name[0] == ' ' {
		return false
	}

	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x20 || c == '|' || c == '"' {
			return false
		}
		if strings.IndexByte(`*+,/:;<=>?[\]`, c) >= 0 {
			return false
		}
	}

	return true
}

// matchesShortName compares target with the 8.3 name of e, ignoring case.
// Both "README.TXT" and the dotless "READMETXT" form are accepted.
func matchesShortName(e DirectoryEntry, target string) bool {
	if len(target) > maxShortNameLength || !IsValidShortName(target) {
		return false
	}

	short := e.ShortName()
	if strings.EqualFold(short, target) {
		return true
	}

	// "." and ".." contain no extension dot that could be dropped.
	if !strings.Contains(short, ".") || strings.HasPrefix(short, ".") {
		return false
	}
	return strings.EqualFold(strings.Replace(short, ".", "", 1), target)
}
