package mirror

const (
	primaryBranchMainConstant   = "main"
	primaryBranchMasterConstant = "master"
)

// BranchSelectionPolicy decides which remote branches are materialized.
type BranchSelectionPolicy int

const (
	// BranchSelectionPrimary materializes main, or master when main is absent.
	BranchSelectionPrimary BranchSelectionPolicy = iota
	// BranchSelectionAll materializes every remote branch.
	BranchSelectionAll
)

// BranchSelectionPolicyFromBool converts the all-branches switch into a policy.
func BranchSelectionPolicyFromBool(cloneAllBranches bool) BranchSelectionPolicy {
	if cloneAllBranches {
		return BranchSelectionAll
	}
	return BranchSelectionPrimary
}

// String returns the configuration spelling of the policy.
func (policy BranchSelectionPolicy) String() string {
	if policy == BranchSelectionAll {
		return "all"
	}
	return "primary"
}

// Select returns the branches to materialize in remote order. The primary policy returns
// nothing when neither main nor master exists.
func (policy BranchSelectionPolicy) Select(branchNames []string) []string {
	if policy == BranchSelectionAll {
		return append([]string(nil), branchNames...)
	}
	for _, primaryCandidate := range []string{primaryBranchMainConstant, primaryBranchMasterConstant} {
		for _, branchName := range branchNames {
			if branchName == primaryCandidate {
				return []string{branchName}
			}
		}
	}
	return nil
}
