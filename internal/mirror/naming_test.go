package mirror_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/temirov/branchmirror/internal/mirror"
)

func TestSanitizeBranchName(testInstance *testing.T) {
	testCases := []struct {
		name       string
		branchName string
		expected   string
	}{
		{name: "plain_name_unchanged", branchName: "develop", expected: "develop"},
		{name: "dots_and_dashes_unchanged", branchName: "release-1.2.3", expected: "release-1.2.3"},
		{name: "slash", branchName: "feature/login", expected: "feature_login"},
		{name: "every_illegal_character", branchName: `a<b>c:d"e/f\g|h?i*j`, expected: "a_b_c_d_e_f_g_h_i_j"},
		{name: "consecutive_illegal_characters", branchName: "fix//**", expected: "fix____"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			sanitized := mirror.SanitizeBranchName(testCase.branchName)
			require.Equal(testInstance, testCase.expected, sanitized)
			require.False(testInstance, strings.ContainsAny(sanitized, `<>:"/\|?*`))
		})
	}
}

func TestAssignFolderNamesDisambiguatesCollisions(testInstance *testing.T) {
	assignments := mirror.AssignFolderNames([]string{"feat/a", "main", "feat:a", "feat_a_2", "feat|a"})

	expected := []mirror.FolderAssignment{
		{BranchName: "feat/a", FolderName: "feat_a"},
		{BranchName: "main", FolderName: "main"},
		{BranchName: "feat:a", FolderName: "feat_a_2", CollidesWith: "feat/a"},
		{BranchName: "feat_a_2", FolderName: "feat_a_2_2", CollidesWith: "feat:a"},
		{BranchName: "feat|a", FolderName: "feat_a_3", CollidesWith: "feat/a"},
	}
	if diff := cmp.Diff(expected, assignments); diff != "" {
		testInstance.Fatalf("unexpected folder assignments (-want +got):\n%s", diff)
	}
}

func TestAssignFolderNamesFollowCurrentListingOrder(testInstance *testing.T) {
	firstRun := mirror.AssignFolderNames([]string{"feat/a"})
	require.Equal(testInstance, []mirror.FolderAssignment{{BranchName: "feat/a", FolderName: "feat_a"}}, firstRun)

	secondRun := mirror.AssignFolderNames([]string{`feat"a`, "feat/a"})
	expected := []mirror.FolderAssignment{
		{BranchName: `feat"a`, FolderName: "feat_a"},
		{BranchName: "feat/a", FolderName: "feat_a_2", CollidesWith: `feat"a`},
	}
	if diff := cmp.Diff(expected, secondRun); diff != "" {
		testInstance.Fatalf("unexpected folder assignments (-want +got):\n%s", diff)
	}
}

func TestAssignFolderNamesKeepsDistinctNames(testInstance *testing.T) {
	assignments := mirror.AssignFolderNames([]string{"main", "develop", "feature/x"})

	folderNames := make([]string, 0, len(assignments))
	for _, assignment := range assignments {
		require.Empty(testInstance, assignment.CollidesWith)
		folderNames = append(folderNames, assignment.FolderName)
	}
	require.Equal(testInstance, []string{"main", "develop", "feature_x"}, folderNames)
}

func TestParseBranchNames(testInstance *testing.T) {
	testCases := []struct {
		name     string
		listing  string
		expected []string
	}{
		{
			name:     "heads_only_in_order",
			listing:  "hash1\trefs/heads/main\nhash2\trefs/tags/v1\nhash3\trefs/heads/dev\n",
			expected: []string{"main", "dev"},
		},
		{
			name:     "nested_branch_names_keep_slashes",
			listing:  "hash1\trefs/heads/feature/login\nhash2\trefs/pull/1/head\n",
			expected: []string{"feature/login"},
		},
		{
			name:     "carriage_returns_and_malformed_lines",
			listing:  "hash1\trefs/heads/main\r\nnot a reference line\n\nhash2\trefs/heads/\n",
			expected: []string{"main"},
		},
		{
			name:     "empty_listing",
			listing:  "",
			expected: nil,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, mirror.ParseBranchNames(testCase.listing))
		})
	}
}

func TestBranchSelectionPolicy(testInstance *testing.T) {
	testCases := []struct {
		name             string
		cloneAllBranches bool
		branchNames      []string
		expected         []string
	}{
		{name: "primary_prefers_main", branchNames: []string{"develop", "main", "feature/x"}, expected: []string{"main"}},
		{name: "primary_falls_back_to_master", branchNames: []string{"develop", "master"}, expected: []string{"master"}},
		{name: "primary_main_wins_over_master", branchNames: []string{"master", "main"}, expected: []string{"main"}},
		{name: "primary_without_main_or_master", branchNames: []string{"develop"}, expected: nil},
		{name: "all_keeps_order", cloneAllBranches: true, branchNames: []string{"develop", "main", "feature/x"}, expected: []string{"develop", "main", "feature/x"}},
		{name: "all_with_empty_set", cloneAllBranches: true, branchNames: nil, expected: nil},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			policy := mirror.BranchSelectionPolicyFromBool(testCase.cloneAllBranches)
			selected := policy.Select(testCase.branchNames)
			if len(testCase.expected) == 0 {
				require.Empty(testInstance, selected)
				return
			}
			require.Equal(testInstance, testCase.expected, selected)
		})
	}
}

func TestBranchSelectionPolicyString(testInstance *testing.T) {
	require.Equal(testInstance, "all", mirror.BranchSelectionAll.String())
	require.Equal(testInstance, "primary", mirror.BranchSelectionPrimary.String())
}
