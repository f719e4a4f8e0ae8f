package manifest

import "strings"

// rangeOperators are the leading range operators preserved across patches.
// Two-character operators must be checked before their one-character prefixes.
var rangeOperators = []string{">=", "<=", "^", "~"}

// splitOperator splits a version-range string into its leading operator
// (possibly empty) and the bare version.
func splitOperator(value string) (string, string) {
	for _, op := range rangeOperators {
		if strings.HasPrefix(value, op) {
			return op, strings.TrimPrefix(value, op)
		}
	}
	return "", value
}

// bareVersion strips any leading range operator from a version string.
func bareVersion(value string) string {
	_, bare := splitOperator(value)
	return bare
}
