package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// release is a parsed dotted version, e.g. "v1.13.4" → [1 13 4].
// Build suffixes ("-eks-e16311", "+abc") are ignored: distribution builds of
// a release share its fix status.
type release []int

// parseRelease parses a Kubernetes version string into its numeric release
// components. Accepts an optional leading "v" and trailing "-"/"+" suffixes.
func parseRelease(v string) (release, error) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	if v == "" {
		return nil, fmt.Errorf("empty version string")
	}
	parts := strings.Split(v, ".")
	rel := make(release, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid version component %q in %q", p, v)
		}
		rel = append(rel, n)
	}
	return rel, nil
}

// compare returns -1, 0, or 1 for a < b, a == b, a > b.
// Missing components count as zero ("1.13" == "1.13.0").
func (a release) compare(b release) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// base returns the major.minor base release ("1.13.4" → "1.13").
func (a release) base() release {
	if len(a) <= 2 {
		return a
	}
	return a[:2]
}

// isVulnerable reports whether checkVersion predates the fix for its own base
// release. fixVersions must be ordered oldest first.
//
// A version is vulnerable when:
//   - a fix exists with the same major.minor base release and the version is
//     older than that fix, or
//   - no fix shares its base release and the version is older than the first
//     (oldest) fix overall.
//
// Unparseable versions are reported as not vulnerable; the caller cannot act
// on a version it cannot read.
func isVulnerable(fixVersions []string, checkVersion string) bool {
	if len(fixVersions) == 0 {
		return false
	}
	check, err := parseRelease(checkVersion)
	if err != nil {
		return false
	}

	sameBaseSeen := false
	for _, fv := range fixVersions {
		fix, err := parseRelease(fv)
		if err != nil {
			continue
		}
		if check.base().compare(fix.base()) == 0 {
			sameBaseSeen = true
			if check.compare(fix) < 0 {
				return true
			}
		}
	}
	if sameBaseSeen {
		return false
	}

	first, err := parseRelease(fixVersions[0])
	if err != nil {
		return false
	}
	return check.compare(first) < 0
}
