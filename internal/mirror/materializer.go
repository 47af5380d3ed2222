package mirror

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	backendMissingMessageConstant           = "repository backend not configured"
	fileSystemMissingMessageConstant        = "filesystem not configured"
	stagingPatternTemplateConstant          = ".%s.partial-"
	directoryPermissionsConstant            = fs.FileMode(0o755)
	inspectTargetFailureTemplateConstant    = "failed to inspect %s: %w"
	createParentFailureTemplateConstant     = "failed to create %s: %w"
	createStagingFailureTemplateConstant    = "failed to create staging directory in %s: %w"
	initStagingFailureTemplateConstant      = "failed to initialize repository: %w"
	configureStagingFailureTemplateConstant = "failed to configure origin: %w"
	fetchStagingFailureTemplateConstant     = "failed to fetch: %w"
	checkoutStagingFailureTemplateConstant  = "failed to check out %q: %w"
	promoteStagingFailureTemplateConstant   = "failed to move %s into place: %w"
	interruptedFailureTemplateConstant      = "materialization interrupted: %w"
	skipLogMessageConstant                  = "Branch folder already exists, skipping"
	materializedLogMessageConstant          = "Materialized branch"
	materializationFailedLogMessageConstant = "Failed to materialize branch"
	stagingCleanupFailedLogMessageConstant  = "Failed to remove staging directory"
	logFieldBranchConstant                  = "branch"
	logFieldTargetPathConstant              = "target_path"
	logFieldStagingPathConstant             = "staging_path"
	logFieldRemoteURLConstant               = "remote_url"
	logFieldDurationConstant                = "duration"
)

// ErrBackendNotConfigured indicates a constructor received a nil RepositoryBackend.
var ErrBackendNotConfigured = errors.New(backendMissingMessageConstant)

// ErrFileSystemNotConfigured indicates a constructor received a nil FileSystem.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// MaterializerDependencies enumerates collaborators required by BranchMaterializer.
type MaterializerDependencies struct {
	Backend    RepositoryBackend
	FileSystem FileSystem
	Logger     *zap.Logger
	Metrics    *Metrics
}

// BranchMaterializer creates one standalone repository per branch.
type BranchMaterializer struct {
	backend    RepositoryBackend
	fileSystem FileSystem
	logger     *zap.Logger
	metrics    *Metrics
}

// NewBranchMaterializer constructs a BranchMaterializer. A nil logger discards log output.
func NewBranchMaterializer(dependencies MaterializerDependencies) (*BranchMaterializer, error) {
	if dependencies.Backend == nil {
		return nil, ErrBackendNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BranchMaterializer{
		backend:    dependencies.Backend,
		fileSystem: dependencies.FileSystem,
		logger:     logger,
		metrics:    dependencies.Metrics,
	}, nil
}

// Materialize produces <parentPath>/<folderName> checked out to branchName. An empty folderName
// defaults to the sanitized branch name. An existing target is skipped without backend calls.
// The repository is assembled in a hidden staging directory and renamed into place only after
// checkout succeeds, so the target exists only for completed branches.
func (materializer *BranchMaterializer) Materialize(executionContext context.Context, remoteURL string, branchName string, parentPath string, folderName string) MaterializationOutcome {
	startTime := time.Now()
	if len(folderName) == 0 {
		folderName = SanitizeBranchName(branchName)
	}
	targetPath := filepath.Join(parentPath, folderName)
	outcome := MaterializationOutcome{BranchName: branchName, FolderName: folderName, TargetPath: targetPath}
	repositoryLabel := filepath.Base(parentPath)

	_, statError := materializer.fileSystem.Stat(targetPath)
	switch {
	case statError == nil:
		materializer.logger.Info(skipLogMessageConstant,
			zap.String(logFieldBranchConstant, branchName),
			zap.String(logFieldTargetPathConstant, targetPath),
		)
		outcome.Status = MaterializationSkipped
		materializer.metrics.recordMaterialization(repositoryLabel, outcome.Status, startTime)
		return outcome
	case !errors.Is(statError, fs.ErrNotExist):
		return materializer.fail(outcome, repositoryLabel, startTime, fmt.Errorf(inspectTargetFailureTemplateConstant, targetPath, statError))
	}

	if contextError := executionContext.Err(); contextError != nil {
		return materializer.fail(outcome, repositoryLabel, startTime, fmt.Errorf(interruptedFailureTemplateConstant, contextError))
	}

	if buildError := materializer.build(executionContext, remoteURL, branchName, parentPath, folderName, targetPath); buildError != nil {
		return materializer.fail(outcome, repositoryLabel, startTime, buildError)
	}

	outcome.Status = MaterializationDone
	materializer.logger.Info(materializedLogMessageConstant,
		zap.String(logFieldBranchConstant, branchName),
		zap.String(logFieldTargetPathConstant, targetPath),
		zap.String(logFieldRemoteURLConstant, remoteURL),
		zap.Duration(logFieldDurationConstant, time.Since(startTime)),
	)
	materializer.metrics.recordMaterialization(repositoryLabel, outcome.Status, startTime)
	return outcome
}

func (materializer *BranchMaterializer) build(executionContext context.Context, remoteURL string, branchName string, parentPath string, folderName string, targetPath string) (buildError error) {
	if mkdirError := materializer.fileSystem.MkdirAll(parentPath, directoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(createParentFailureTemplateConstant, parentPath, mkdirError)
	}

	stagingPath, stagingError := materializer.fileSystem.MkdirTemp(parentPath, fmt.Sprintf(stagingPatternTemplateConstant, folderName))
	if stagingError != nil {
		return fmt.Errorf(createStagingFailureTemplateConstant, parentPath, stagingError)
	}
	defer func() {
		if buildError == nil {
			return
		}
		if removeError := materializer.fileSystem.RemoveAll(stagingPath); removeError != nil {
			materializer.logger.Warn(stagingCleanupFailedLogMessageConstant,
				zap.String(logFieldStagingPathConstant, stagingPath),
				zap.Error(removeError),
			)
		}
	}()

	if initError := materializer.backend.InitRepository(executionContext, stagingPath); initError != nil {
		return fmt.Errorf(initStagingFailureTemplateConstant, initError)
	}
	if configureError := ConfigureOriginRemote(executionContext, materializer.backend, stagingPath, remoteURL); configureError != nil {
		return fmt.Errorf(configureStagingFailureTemplateConstant, configureError)
	}
	if fetchError := materializer.backend.Fetch(executionContext, stagingPath); fetchError != nil {
		return fmt.Errorf(fetchStagingFailureTemplateConstant, fetchError)
	}
	if checkoutError := materializer.backend.Checkout(executionContext, stagingPath, branchName); checkoutError != nil {
		return fmt.Errorf(checkoutStagingFailureTemplateConstant, branchName, checkoutError)
	}
	if renameError := materializer.fileSystem.Rename(stagingPath, targetPath); renameError != nil {
		return fmt.Errorf(promoteStagingFailureTemplateConstant, stagingPath, renameError)
	}
	return nil
}

func (materializer *BranchMaterializer) fail(outcome MaterializationOutcome, repositoryLabel string, startTime time.Time, failure error) MaterializationOutcome {
	materializer.logger.Error(materializationFailedLogMessageConstant,
		zap.String(logFieldBranchConstant, outcome.BranchName),
		zap.String(logFieldTargetPathConstant, outcome.TargetPath),
		zap.Error(failure),
	)
	outcome.Status = MaterializationFailed
	outcome.Error = failure
	materializer.metrics.recordMaterialization(repositoryLabel, outcome.Status, startTime)
	return outcome
}
