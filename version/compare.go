// Package version compares release strings and gates which servers the client talks to.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

type release [3]int

// parse reads "10.8", "10.8.13" or "v10.8.13". Anything after a '-' or '+' is ignored.
func parse(s string) (release, error) {
	var r release

	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		s = s[:i]
	}

	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return r, fmt.Errorf("malformed version %q", s)
	}

	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return r, fmt.Errorf("malformed version %q", s)
		}
		r[i] = n
	}
	return r, nil
}

// Compare returns 1 if a > b, -1 if a < b and 0 if they are equal.
func Compare(a, b string) (int, error) {
	av, err := parse(a)
	if err != nil {
		return 0, err
	}

	bv, err := parse(b)
	if err != nil {
		return 0, err
	}

	for _, pair := range lo.Zip2(av[:], bv[:]) {
		switch {
		case pair.A > pair.B:
			return 1, nil
		case pair.A < pair.B:
			return -1, nil
		}
	}
	return 0, nil
}
