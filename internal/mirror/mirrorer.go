package mirror

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/branchmirror/internal/lock"
)

const (
	remoteURLRequiredMessageConstant           = "remote url must be provided"
	rootPathRequiredMessageConstant            = "root path must be provided"
	repositoryNameRequiredMessageConstant      = "repository name must be provided"
	createRepositoryFailureTemplateConstant    = "failed to create repository folder %s: %w"
	initRepositoryFailureTemplateConstant      = "failed to initialize repository folder %s: %w"
	configureRepositoryFailureTemplateConstant = "failed to configure origin for %s: %w"
	listBranchesFailureTemplateConstant        = "failed to list branches of %s: %w"
	mirrorStartedLogMessageConstant            = "Mirroring repository"
	mirrorAbortedLogMessageConstant            = "Mirror aborted"
	emptyListingLogMessageConstant             = "Remote returned no references, nothing to mirror"
	noBranchesLogMessageConstant               = "Remote has no branches, nothing to mirror"
	noPrimaryBranchLogMessageConstant          = "Remote has neither main nor master, nothing to mirror"
	folderCollisionLogMessageConstant          = "Branch folder name collides with an earlier branch, using suffixed folder"
	mirrorCompletedLogMessageConstant          = "Mirror completed"
	logFieldRepositoryPathConstant             = "repository_path"
	logFieldPolicyConstant                     = "policy"
	logFieldFolderConstant                     = "folder"
	logFieldCollidesWithConstant               = "collides_with"
	logFieldBranchCountConstant                = "branches"
	logFieldDoneCountConstant                  = "done"
	logFieldSkippedCountConstant               = "skipped"
	logFieldFailedCountConstant                = "failed"
)

// ErrRemoteURLRequired indicates MirrorOptions.RemoteURL was empty.
var ErrRemoteURLRequired = errors.New(remoteURLRequiredMessageConstant)

// ErrRootPathRequired indicates MirrorOptions.RootPath was empty.
var ErrRootPathRequired = errors.New(rootPathRequiredMessageConstant)

// ErrRepositoryNameRequired indicates MirrorOptions.RepositoryName was empty.
var ErrRepositoryNameRequired = errors.New(repositoryNameRequiredMessageConstant)

// MirrorerDependencies enumerates collaborators required by RepositoryMirrorer.
type MirrorerDependencies struct {
	Backend    RepositoryBackend
	FileSystem FileSystem
	Logger     *zap.Logger
	Metrics    *Metrics
}

// MirrorOptions describes one repository to mirror.
type MirrorOptions struct {
	RemoteURL      string
	RootPath       string
	RepositoryName string
	Policy         BranchSelectionPolicy
}

// RepositoryMirrorer lays out a remote's branches as sibling checkouts under <root>/<repository>.
type RepositoryMirrorer struct {
	backend      RepositoryBackend
	fileSystem   FileSystem
	logger       *zap.Logger
	metrics      *Metrics
	materializer *BranchMaterializer
	pathLocks    *lock.KeyedMutex
}

// NewRepositoryMirrorer constructs a RepositoryMirrorer. A nil logger discards log output.
func NewRepositoryMirrorer(dependencies MirrorerDependencies) (*RepositoryMirrorer, error) {
	materializer, materializerError := NewBranchMaterializer(MaterializerDependencies(dependencies))
	if materializerError != nil {
		return nil, materializerError
	}
	return &RepositoryMirrorer{
		backend:      dependencies.Backend,
		fileSystem:   dependencies.FileSystem,
		logger:       materializer.logger,
		metrics:      dependencies.Metrics,
		materializer: materializer,
		pathLocks:    lock.NewKeyedMutex(),
	}, nil
}

// Mirror discovers the remote's branches and materializes the ones selected by the policy, one at a time.
// Failures are logged and recorded on the returned report rather than returned.
// Concurrent calls for the same repository folder are serialized.
func (mirrorer *RepositoryMirrorer) Mirror(executionContext context.Context, options MirrorOptions) MirrorReport {
	report := MirrorReport{RemoteURL: strings.TrimSpace(options.RemoteURL)}

	if validationError := validateOptions(options); validationError != nil {
		return mirrorer.abort(report, validationError)
	}

	repositoryName := strings.TrimSpace(options.RepositoryName)
	repositoryPath := filepath.Join(strings.TrimSpace(options.RootPath), repositoryName)
	report.RepositoryPath = repositoryPath

	release := mirrorer.pathLocks.Lock(repositoryPath)
	defer release()

	mirrorer.logger.Info(mirrorStartedLogMessageConstant,
		zap.String(logFieldRemoteURLConstant, report.RemoteURL),
		zap.String(logFieldRepositoryPathConstant, repositoryPath),
		zap.String(logFieldPolicyConstant, options.Policy.String()),
	)

	if setupError := mirrorer.prepareRepositoryFolder(executionContext, report.RemoteURL, repositoryPath); setupError != nil {
		return mirrorer.abort(report, setupError)
	}

	referenceListing, listError := mirrorer.backend.ListRemoteReferences(executionContext, report.RemoteURL)
	if listError != nil {
		return mirrorer.abort(report, fmt.Errorf(listBranchesFailureTemplateConstant, report.RemoteURL, listError))
	}
	if len(strings.TrimSpace(referenceListing)) == 0 {
		return mirrorer.finishWithoutBranches(report, emptyListingLogMessageConstant)
	}

	branchNames := ParseBranchNames(referenceListing)
	if len(branchNames) == 0 {
		return mirrorer.finishWithoutBranches(report, noBranchesLogMessageConstant)
	}

	selectedBranches := options.Policy.Select(branchNames)
	if len(selectedBranches) == 0 {
		return mirrorer.finishWithoutBranches(report, noPrimaryBranchLogMessageConstant)
	}

	for _, assignment := range AssignFolderNames(selectedBranches) {
		if len(assignment.CollidesWith) > 0 {
			mirrorer.logger.Warn(folderCollisionLogMessageConstant,
				zap.String(logFieldBranchConstant, assignment.BranchName),
				zap.String(logFieldCollidesWithConstant, assignment.CollidesWith),
				zap.String(logFieldFolderConstant, assignment.FolderName),
			)
		}
		outcome := mirrorer.materializer.Materialize(executionContext, report.RemoteURL, assignment.BranchName, repositoryPath, assignment.FolderName)
		report.Outcomes = append(report.Outcomes, outcome)
	}

	mirrorer.logger.Info(mirrorCompletedLogMessageConstant,
		zap.String(logFieldRepositoryPathConstant, repositoryPath),
		zap.Int(logFieldBranchCountConstant, len(report.Outcomes)),
		zap.Int(logFieldDoneCountConstant, report.DoneCount()),
		zap.Int(logFieldSkippedCountConstant, report.SkippedCount()),
		zap.Int(logFieldFailedCountConstant, report.FailedCount()),
	)
	mirrorer.metrics.recordMirror(repositoryName, report)
	return report
}

func (mirrorer *RepositoryMirrorer) prepareRepositoryFolder(executionContext context.Context, remoteURL string, repositoryPath string) error {
	if mkdirError := mirrorer.fileSystem.MkdirAll(repositoryPath, directoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(createRepositoryFailureTemplateConstant, repositoryPath, mkdirError)
	}
	if initError := mirrorer.backend.InitRepository(executionContext, repositoryPath); initError != nil {
		return fmt.Errorf(initRepositoryFailureTemplateConstant, repositoryPath, initError)
	}
	if configureError := ConfigureOriginRemote(executionContext, mirrorer.backend, repositoryPath, remoteURL); configureError != nil {
		return fmt.Errorf(configureRepositoryFailureTemplateConstant, repositoryPath, configureError)
	}
	return nil
}

func (mirrorer *RepositoryMirrorer) finishWithoutBranches(report MirrorReport, message string) MirrorReport {
	mirrorer.logger.Warn(message,
		zap.String(logFieldRemoteURLConstant, report.RemoteURL),
		zap.String(logFieldRepositoryPathConstant, report.RepositoryPath),
	)
	report.NoBranchesMaterialized = true
	return report
}

func (mirrorer *RepositoryMirrorer) abort(report MirrorReport, failure error) MirrorReport {
	mirrorer.logger.Error(mirrorAbortedLogMessageConstant,
		zap.String(logFieldRemoteURLConstant, report.RemoteURL),
		zap.String(logFieldRepositoryPathConstant, report.RepositoryPath),
		zap.Error(failure),
	)
	report.Failure = failure
	return report
}

func validateOptions(options MirrorOptions) error {
	if len(strings.TrimSpace(options.RemoteURL)) == 0 {
		return ErrRemoteURLRequired
	}
	if len(strings.TrimSpace(options.RootPath)) == 0 {
		return ErrRootPathRequired
	}
	if len(strings.TrimSpace(options.RepositoryName)) == 0 {
		return ErrRepositoryNameRequired
	}
	return nil
}
