package mirror

import (
	"fmt"
	"strings"
)

const (
	sanitizedReplacementConstant    = "_"
	collisionSuffixTemplateConstant = "%s_%d"
	firstCollisionSuffixConstant    = 2
	illegalFolderCharactersConstant = "<>:\"/\\|?*"
)

var folderNameReplacer = buildFolderNameReplacer()

func buildFolderNameReplacer() *strings.Replacer {
	replacements := make([]string, 0, 2*len(illegalFolderCharactersConstant))
	for _, illegalCharacter := range illegalFolderCharactersConstant {
		replacements = append(replacements, string(illegalCharacter), sanitizedReplacementConstant)
	}
	return strings.NewReplacer(replacements...)
}

// SanitizeBranchName replaces characters that are illegal in folder names with underscores.
func SanitizeBranchName(branchName string) string {
	return folderNameReplacer.Replace(branchName)
}

// FolderAssignment maps a branch to the folder it is materialized into.
type FolderAssignment struct {
	BranchName string
	FolderName string
	// CollidesWith names the earlier branch whose sanitized name this branch shared, if any.
	CollidesWith string
}

// AssignFolderNames sanitizes every branch name and disambiguates collisions in order.
// The first branch keeps the sanitized name; later ones receive _2, _3 and so on.
func AssignFolderNames(branchNames []string) []FolderAssignment {
	assignments := make([]FolderAssignment, 0, len(branchNames))
	claimedBy := make(map[string]string, len(branchNames))

	for _, branchName := range branchNames {
		folderName := SanitizeBranchName(branchName)
		assignment := FolderAssignment{BranchName: branchName, FolderName: folderName}

		if owner, taken := claimedBy[folderName]; taken {
			assignment.CollidesWith = owner
			for suffix := firstCollisionSuffixConstant; ; suffix++ {
				candidate := fmt.Sprintf(collisionSuffixTemplateConstant, folderName, suffix)
				if _, candidateTaken := claimedBy[candidate]; !candidateTaken {
					assignment.FolderName = candidate
					break
				}
			}
		}

		claimedBy[assignment.FolderName] = branchName
		assignments = append(assignments, assignment)
	}

	return assignments
}
