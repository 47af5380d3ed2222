package mirror

import "strings"

const (
	headsReferencePrefixConstant    = "refs/heads/"
	carriageReturnConstant          = "\r"
	referenceFieldSeparatorConstant = "\t"
	listingLineSeparatorConstant    = "\n"
)

// ParseBranchNames extracts branch names from ls-remote output, keeping the remote's order.
// Lines that are not "<hash>\t<ref>" pairs and refs outside refs/heads/ are ignored.
func ParseBranchNames(listing string) []string {
	var branchNames []string
	for _, line := range strings.Split(listing, listingLineSeparatorConstant) {
		fields := strings.Split(strings.TrimRight(line, carriageReturnConstant), referenceFieldSeparatorConstant)
		if len(fields) < 2 {
			continue
		}
		reference := strings.TrimSpace(fields[1])
		if !strings.HasPrefix(reference, headsReferencePrefixConstant) {
			continue
		}
		branchName := strings.TrimPrefix(reference, headsReferencePrefixConstant)
		if len(branchName) == 0 {
			continue
		}
		branchNames = append(branchNames, branchName)
	}
	return branchNames
}
