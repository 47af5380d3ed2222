package mirror_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/branchmirror/internal/execshell"
	"github.com/temirov/branchmirror/internal/filesystem"
	"github.com/temirov/branchmirror/internal/gitrepo"
	"github.com/temirov/branchmirror/internal/mirror"
)

const (
	testRemoteURLConstant        = "git@github.com:example/repo.git"
	testOtherRemoteURLConstant   = "https://github.com/example/repo.git"
	testExistingContentConstant  = "local edits that must survive"
	testExistingFileNameConstant = "NOTES.md"
	testStagingMarkerConstant    = ".partial-"
)

type renameFailingFileSystem struct {
	filesystem.OSFileSystem
	renameError error
}

func (fileSystem renameFailingFileSystem) Rename(string, string) error {
	return fileSystem.renameError
}

type acceptingGitExecutor struct {
	recordedArguments [][]string
}

func (executor *acceptingGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedArguments = append(executor.recordedArguments, details.Arguments)
	return execshell.ExecutionResult{}, nil
}

func newTestMaterializer(testInstance *testing.T, backend mirror.RepositoryBackend, fileSystem mirror.FileSystem, logger *zap.Logger) *mirror.BranchMaterializer {
	testInstance.Helper()
	materializer, creationError := mirror.NewBranchMaterializer(mirror.MaterializerDependencies{
		Backend:    backend,
		FileSystem: fileSystem,
		Logger:     logger,
	})
	require.NoError(testInstance, creationError)
	return materializer
}

func requireNoStagingDirectories(testInstance *testing.T, parentPath string) {
	testInstance.Helper()
	entries, readError := os.ReadDir(parentPath)
	require.NoError(testInstance, readError)
	for _, entry := range entries {
		require.NotContains(testInstance, entry.Name(), testStagingMarkerConstant)
	}
}

func TestNewBranchMaterializerValidatesDependencies(testInstance *testing.T) {
	_, creationError := mirror.NewBranchMaterializer(mirror.MaterializerDependencies{FileSystem: filesystem.OSFileSystem{}})
	require.ErrorIs(testInstance, creationError, mirror.ErrBackendNotConfigured)

	_, creationError = mirror.NewBranchMaterializer(mirror.MaterializerDependencies{Backend: newFakeBackend("")})
	require.ErrorIs(testInstance, creationError, mirror.ErrFileSystemNotConfigured)
}

func TestMaterializeCreatesCheckoutThroughStaging(testInstance *testing.T) {
	parentPath := filepath.Join(testInstance.TempDir(), "repo")
	backend := newFakeBackend("")
	materializer := newTestMaterializer(testInstance, backend, filesystem.OSFileSystem{}, zap.NewNop())

	outcome := materializer.Materialize(context.Background(), testRemoteURLConstant, "feature/login", parentPath, "")

	require.Equal(testInstance, mirror.MaterializationDone, outcome.Status)
	require.NoError(testInstance, outcome.Error)
	require.Equal(testInstance, "feature_login", outcome.FolderName)
	require.Equal(testInstance, filepath.Join(parentPath, "feature_login"), outcome.TargetPath)

	checkedOut, readError := os.ReadFile(filepath.Join(outcome.TargetPath, fakeCheckedOutBranchFile))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "feature/login", string(checkedOut))
	requireNoStagingDirectories(testInstance, parentPath)

	calls := backend.recordedCalls()
	operations := make([]string, 0, len(calls))
	for _, call := range calls {
		operations = append(operations, call.operation)
		require.True(testInstance, strings.HasPrefix(filepath.Base(call.path), ".feature_login.partial-"), "backend call outside staging: %s", call.path)
	}
	require.Equal(testInstance, []string{fakeOperationInit, fakeOperationListRemotes, fakeOperationAddRemote, fakeOperationFetch, fakeOperationCheckout}, operations)
	require.Equal(testInstance, map[string]string{"origin": testRemoteURLConstant}, backend.remotesOf(calls[0].path))
}

func TestMaterializeUsesExplicitFolderName(testInstance *testing.T) {
	parentPath := testInstance.TempDir()
	materializer := newTestMaterializer(testInstance, newFakeBackend(""), filesystem.OSFileSystem{}, zap.NewNop())

	outcome := materializer.Materialize(context.Background(), testRemoteURLConstant, "feat:a", parentPath, "feat_a_2")

	require.Equal(testInstance, mirror.MaterializationDone, outcome.Status)
	require.DirExists(testInstance, filepath.Join(parentPath, "feat_a_2"))
}

func TestMaterializeSkipsExistingFolderWithoutBackendCalls(testInstance *testing.T) {
	parentPath := testInstance.TempDir()
	targetPath := filepath.Join(parentPath, "main")
	require.NoError(testInstance, os.MkdirAll(targetPath, 0o755))
	existingFilePath := filepath.Join(targetPath, testExistingFileNameConstant)
	require.NoError(testInstance, os.WriteFile(existingFilePath, []byte(testExistingContentConstant), 0o644))

	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	backend := newFakeBackend("")
	materializer := newTestMaterializer(testInstance, backend, filesystem.OSFileSystem{}, zap.New(observerCore))

	outcome := materializer.Materialize(context.Background(), testRemoteURLConstant, "main", parentPath, "")

	require.Equal(testInstance, mirror.MaterializationSkipped, outcome.Status)
	require.Empty(testInstance, backend.recordedCalls())

	content, readError := os.ReadFile(existingFilePath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, testExistingContentConstant, string(content))
	entries, readDirError := os.ReadDir(targetPath)
	require.NoError(testInstance, readDirError)
	require.Len(testInstance, entries, 1)

	require.Equal(testInstance, 1, observedLogs.FilterMessage("Branch folder already exists, skipping").Len())
}

func TestMaterializeRemovesStagingAfterFailure(testInstance *testing.T) {
	checkoutFailure := errors.New("error: pathspec 'ghost' did not match")

	testCases := []struct {
		name          string
		configure     func(backend *fakeBackend)
		fileSystem    mirror.FileSystem
		expectedCause error
	}{
		{
			name: "checkout_failure",
			configure: func(backend *fakeBackend) {
				backend.checkoutFailures["ghost"] = checkoutFailure
			},
			fileSystem:    filesystem.OSFileSystem{},
			expectedCause: checkoutFailure,
		},
		{
			name: "fetch_failure",
			configure: func(backend *fakeBackend) {
				backend.fetchError = context.DeadlineExceeded
			},
			fileSystem:    filesystem.OSFileSystem{},
			expectedCause: context.DeadlineExceeded,
		},
		{
			name:          "rename_failure",
			configure:     func(*fakeBackend) {},
			fileSystem:    renameFailingFileSystem{renameError: os.ErrPermission},
			expectedCause: os.ErrPermission,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			parentPath := testInstance.TempDir()
			backend := newFakeBackend("")
			testCase.configure(backend)
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			materializer := newTestMaterializer(testInstance, backend, testCase.fileSystem, zap.New(observerCore))

			outcome := materializer.Materialize(context.Background(), testRemoteURLConstant, "ghost", parentPath, "")

			require.Equal(testInstance, mirror.MaterializationFailed, outcome.Status)
			require.ErrorIs(testInstance, outcome.Error, testCase.expectedCause)
			require.NoDirExists(testInstance, outcome.TargetPath)
			requireNoStagingDirectories(testInstance, parentPath)

			failureLogs := observedLogs.FilterMessage("Failed to materialize branch").All()
			require.Len(testInstance, failureLogs, 1)
			require.Equal(testInstance, zapcore.ErrorLevel, failureLogs[0].Level)
			require.Equal(testInstance, "ghost", failureLogs[0].ContextMap()["branch"])
		})
	}
}

func TestMaterializeFailsOptionLikeBranchWithoutPublishingFolder(testInstance *testing.T) {
	parentPath := testInstance.TempDir()
	executor := &acceptingGitExecutor{}
	backend, backendError := gitrepo.NewGitBackend(gitrepo.BackendDependencies{GitExecutor: executor})
	require.NoError(testInstance, backendError)
	materializer := newTestMaterializer(testInstance, backend, filesystem.OSFileSystem{}, zap.NewNop())

	outcome := materializer.Materialize(context.Background(), testRemoteURLConstant, "--orphan=x", parentPath, "")

	require.Equal(testInstance, mirror.MaterializationFailed, outcome.Status)
	require.ErrorIs(testInstance, outcome.Error, gitrepo.ErrBranchNameOptionLike)
	require.NoDirExists(testInstance, outcome.TargetPath)
	requireNoStagingDirectories(testInstance, parentPath)
	for _, arguments := range executor.recordedArguments {
		require.NotEqual(testInstance, "checkout", arguments[0])
	}

	rerunOutcome := materializer.Materialize(context.Background(), testRemoteURLConstant, "--orphan=x", parentPath, "")
	require.Equal(testInstance, mirror.MaterializationFailed, rerunOutcome.Status)
}

func TestMaterializeRetriesAfterEarlierFailure(testInstance *testing.T) {
	parentPath := testInstance.TempDir()
	backend := newFakeBackend("")
	backend.checkoutFailures["main"] = errors.New("network unreachable")
	materializer := newTestMaterializer(testInstance, backend, filesystem.OSFileSystem{}, zap.NewNop())

	firstOutcome := materializer.Materialize(context.Background(), testRemoteURLConstant, "main", parentPath, "")
	require.Equal(testInstance, mirror.MaterializationFailed, firstOutcome.Status)

	delete(backend.checkoutFailures, "main")
	secondOutcome := materializer.Materialize(context.Background(), testRemoteURLConstant, "main", parentPath, "")
	require.Equal(testInstance, mirror.MaterializationDone, secondOutcome.Status)
}

func TestMaterializeStopsWhenContextCancelled(testInstance *testing.T) {
	parentPath := testInstance.TempDir()
	backend := newFakeBackend("")
	materializer := newTestMaterializer(testInstance, backend, filesystem.OSFileSystem{}, zap.NewNop())

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := materializer.Materialize(cancelledContext, testRemoteURLConstant, "main", parentPath, "")

	require.Equal(testInstance, mirror.MaterializationFailed, outcome.Status)
	require.ErrorIs(testInstance, outcome.Error, context.Canceled)
	require.Empty(testInstance, backend.recordedCalls())
}

func TestConfigureOriginRemoteIsIdempotent(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	backend := newFakeBackend("")

	require.NoError(testInstance, mirror.ConfigureOriginRemote(context.Background(), backend, repositoryPath, testRemoteURLConstant))
	require.NoError(testInstance, mirror.ConfigureOriginRemote(context.Background(), backend, repositoryPath, testRemoteURLConstant))
	require.Equal(testInstance, map[string]string{"origin": testRemoteURLConstant}, backend.remotesOf(repositoryPath))

	require.NoError(testInstance, mirror.ConfigureOriginRemote(context.Background(), backend, repositoryPath, testOtherRemoteURLConstant))
	require.Equal(testInstance, map[string]string{"origin": testOtherRemoteURLConstant}, backend.remotesOf(repositoryPath))

	require.Len(testInstance, backend.operationsFor(fakeOperationAddRemote), 1)
	require.Len(testInstance, backend.operationsFor(fakeOperationSetRemoteURL), 2)
}

func TestConfigureOriginRemoteIgnoresSimilarlyNamedRemotes(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	backend := newFakeBackend("")
	require.NoError(testInstance, backend.AddRemote(context.Background(), repositoryPath, "origin-backup", testOtherRemoteURLConstant))

	require.NoError(testInstance, mirror.ConfigureOriginRemote(context.Background(), backend, repositoryPath, testRemoteURLConstant))

	require.Equal(testInstance, map[string]string{"origin": testRemoteURLConstant, "origin-backup": testOtherRemoteURLConstant}, backend.remotesOf(repositoryPath))
}
