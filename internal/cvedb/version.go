package cvedb

import (
	"slices"
	"strconv"
	"strings"
)

// rangeOps are the recognized condition operators, longest first so
// "<=", ">=", and "==" are matched before their single-character
// prefixes. A condition with no recognized prefix defaults to "=".
var rangeOps = []string{"<=", ">=", "<", ">", "==", "="}

// versionInRange reports whether version satisfies the range expression.
//
// Two comparison strategies exist and are deliberately kept separate
// (their tie-break and operand semantics genuinely differ):
//
//   - Semantic matching applies when the query version normalizes to a
//     3-component numeric form AND the range uses comma-delimited
//     conditions. Versions are compared component-wise as integers.
//   - Lexical matching is the fallback for everything else: versions
//     are tokenized on non-alphanumeric boundaries, lowercased, and the
//     token sequences compared lexicographically. The literal range
//     "any" always matches.
//
// Malformed conditions evaluate false rather than erroring, so a bad
// database entry excludes itself instead of breaking the lookup.
func versionInRange(version, rangeExpr string) bool {
	if _, ok := parseVersionTuple(version); ok && strings.Contains(rangeExpr, ",") {
		return semverMatch(version, rangeExpr)
	}
	return lexicalMatch(version, rangeExpr)
}

// normalizeVersion reduces a version string to exactly three
// dot-separated components, stripping an optional leading "v", padding
// missing trailing components with "0" and truncating extras.
// "9.3" becomes "9.3.0", "v1.2.3.4" becomes "1.2.3".
func normalizeVersion(v string) string {
	parts := strings.Split(strings.TrimPrefix(strings.TrimSpace(v), "v"), ".")
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	return strings.Join(parts[:3], ".")
}

// parseVersionTuple parses a version string into a 3-component numeric
// tuple after normalization. ok is false when any component is not a
// plain non-negative integer.
func parseVersionTuple(v string) ([3]int, bool) {
	var tuple [3]int
	for i, part := range strings.SplitN(normalizeVersion(v), ".", 3) {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return tuple, false
		}
		tuple[i] = n
	}
	return tuple, true
}

// compareTuples returns -1, 0, or +1 ordering a before b component-wise.
func compareTuples(a, b [3]int) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// splitOp splits a condition like ">=8.0.0" into its operator and
// operand. Conditions without a recognized operator prefix are treated
// as exact-match ("=") conditions.
func splitOp(cond string) (op, operand string) {
	for _, candidate := range rangeOps {
		if rest, ok := strings.CutPrefix(cond, candidate); ok {
			return candidate, strings.TrimSpace(rest)
		}
	}
	return "=", strings.TrimSpace(cond)
}

// opHolds applies an operator to a three-way comparison result.
func opHolds(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	case "=", "==":
		return cmp == 0
	default:
		return false
	}
}

// semverMatch evaluates every comma-separated condition in rangeExpr
// against version using numeric 3-tuple ordering. All conditions must
// hold. An unparseable condition operand fails the whole range.
func semverMatch(version, rangeExpr string) bool {
	query, ok := parseVersionTuple(version)
	if !ok {
		return false
	}

	for cond := range strings.SplitSeq(rangeExpr, ",") {
		cond = strings.TrimSpace(cond)
		if cond == "" {
			continue
		}
		op, operand := splitOp(cond)
		other, ok := parseVersionTuple(operand)
		if !ok {
			return false
		}
		if !opHolds(op, compareTuples(query, other)) {
			return false
		}
	}
	return true
}

// lexicalMatch evaluates rangeExpr against version by tokenized string
// comparison. The literal range "any" (case-insensitive) matches
// unconditionally; otherwise all comma-separated conditions must hold.
func lexicalMatch(version, rangeExpr string) bool {
	if strings.EqualFold(strings.TrimSpace(rangeExpr), "any") {
		return true
	}

	for cond := range strings.SplitSeq(rangeExpr, ",") {
		cond = strings.TrimSpace(cond)
		if cond == "" {
			continue
		}
		op, operand := splitOp(cond)
		if !opHolds(op, lexicalCompare(version, operand)) {
			return false
		}
	}
	return true
}

// lexicalCompare orders two arbitrary version strings by splitting each
// on non-alphanumeric boundaries, lowercasing the tokens, and comparing
// the token sequences lexicographically. This gives a stable, intuitive
// ordering for vendor strings like "OpenSSH_7.2" that are not semantic
// versions.
func lexicalCompare(a, b string) int {
	return slices.Compare(tokenize(a), tokenize(b))
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, strings.ToLower(f))
	}
	return tokens
}
