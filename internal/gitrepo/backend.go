package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/temirov/branchmirror/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant        = "git executor not configured"
	repositoryPathRequiredMessageConstant    = "repository path must be provided"
	remoteNameRequiredMessageConstant        = "remote name must be provided"
	remoteURLRequiredMessageConstant         = "remote url must be provided"
	branchNameRequiredMessageConstant        = "branch name must be provided"
	branchNameOptionLikeMessageConstant      = "branch name must not start with a dash"
	branchNameOptionLikeTemplateConstant     = "%w: %q"
	gitInitFailureTemplateConstant           = "failed to initialize repository in %s: %w"
	gitListRemotesFailureTemplateConstant    = "failed to list remotes in %s: %w"
	gitSetRemoteURLFailureTemplateConstant   = "failed to point remote %s at %s: %w"
	gitAddRemoteFailureTemplateConstant      = "failed to add remote %s for %s: %w"
	gitFetchFailureTemplateConstant          = "failed to fetch in %s: %w"
	gitCheckoutFailureTemplateConstant       = "failed to check out branch %q in %s: %w"
	gitListReferencesFailureTemplateConstant = "failed to list branches of %s: %w"
	gitInitSubcommandConstant                = "init"
	gitRemoteSubcommandConstant              = "remote"
	gitRemoteAddSubcommandConstant           = "add"
	gitRemoteSetURLSubcommandConstant        = "set-url"
	gitFetchSubcommandConstant               = "fetch"
	gitFetchAllFlagConstant                  = "--all"
	gitCheckoutSubcommandConstant            = "checkout"
	gitLSRemoteSubcommandConstant            = "ls-remote"
	gitHeadsFlagConstant                     = "--heads"
	gitEndOfOptionsConstant                  = "--"
	optionPrefixConstant                     = "-"
	gitTerminalPromptEnvironmentNameConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableValue = "0"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrRepositoryPathRequired indicates a repository path argument was empty.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrRemoteNameRequired indicates a remote name argument was empty.
var ErrRemoteNameRequired = errors.New(remoteNameRequiredMessageConstant)

// ErrRemoteURLRequired indicates a remote url argument was empty.
var ErrRemoteURLRequired = errors.New(remoteURLRequiredMessageConstant)

// ErrBranchNameRequired indicates a branch name argument was empty.
var ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)

// ErrBranchNameOptionLike indicates a branch name git would parse as a command-line option.
var ErrBranchNameOptionLike = errors.New(branchNameOptionLikeMessageConstant)

// GitExecutor exposes the subset of shell execution used by the backend.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// BackendDependencies enumerates collaborators required by GitBackend.
type BackendDependencies struct {
	GitExecutor GitExecutor
	// RemoteTimeout bounds each fetch and ls-remote call; zero disables the bound.
	RemoteTimeout time.Duration
}

// GitBackend performs repository operations by invoking git. Every operation names its repository path explicitly.
type GitBackend struct {
	executor      GitExecutor
	remoteTimeout time.Duration
}

// NewGitBackend constructs a GitBackend from the provided dependencies.
func NewGitBackend(dependencies BackendDependencies) (*GitBackend, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	remoteTimeout := dependencies.RemoteTimeout
	if remoteTimeout < 0 {
		remoteTimeout = 0
	}
	return &GitBackend{executor: dependencies.GitExecutor, remoteTimeout: remoteTimeout}, nil
}

// InitRepository creates an empty repository in repositoryPath.
func (backend *GitBackend) InitRepository(executionContext context.Context, repositoryPath string) error {
	trimmedRepositoryPath, validationError := requireValue(repositoryPath, ErrRepositoryPathRequired)
	if validationError != nil {
		return validationError
	}
	if _, executionError := backend.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitInitSubcommandConstant},
		WorkingDirectory: trimmedRepositoryPath,
	}); executionError != nil {
		return fmt.Errorf(gitInitFailureTemplateConstant, trimmedRepositoryPath, executionError)
	}
	return nil
}

// ListRemotes returns the raw `git remote` output, one remote name per line.
func (backend *GitBackend) ListRemotes(executionContext context.Context, repositoryPath string) (string, error) {
	trimmedRepositoryPath, validationError := requireValue(repositoryPath, ErrRepositoryPathRequired)
	if validationError != nil {
		return "", validationError
	}
	executionResult, executionError := backend.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant},
		WorkingDirectory: trimmedRepositoryPath,
	})
	if executionError != nil {
		return "", fmt.Errorf(gitListRemotesFailureTemplateConstant, trimmedRepositoryPath, executionError)
	}
	return executionResult.StandardOutput, nil
}

// SetRemoteURL repoints an existing remote.
func (backend *GitBackend) SetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error {
	details, validationError := buildRemoteCommandDetails(gitRemoteSetURLSubcommandConstant, repositoryPath, remoteName, remoteURL)
	if validationError != nil {
		return validationError
	}
	if _, executionError := backend.executor.ExecuteGit(executionContext, details); executionError != nil {
		return fmt.Errorf(gitSetRemoteURLFailureTemplateConstant, details.Arguments[3], details.Arguments[4], executionError)
	}
	return nil
}

// AddRemote registers a new remote.
func (backend *GitBackend) AddRemote(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error {
	details, validationError := buildRemoteCommandDetails(gitRemoteAddSubcommandConstant, repositoryPath, remoteName, remoteURL)
	if validationError != nil {
		return validationError
	}
	if _, executionError := backend.executor.ExecuteGit(executionContext, details); executionError != nil {
		return fmt.Errorf(gitAddRemoteFailureTemplateConstant, details.Arguments[3], details.Arguments[4], executionError)
	}
	return nil
}

// Fetch downloads objects and references from every configured remote.
func (backend *GitBackend) Fetch(executionContext context.Context, repositoryPath string) error {
	trimmedRepositoryPath, validationError := requireValue(repositoryPath, ErrRepositoryPathRequired)
	if validationError != nil {
		return validationError
	}

	remoteContext, cancel := backend.remoteContext(executionContext)
	defer cancel()

	if _, executionError := backend.executor.ExecuteGit(remoteContext, execshell.CommandDetails{
		Arguments:            []string{gitFetchSubcommandConstant, gitFetchAllFlagConstant},
		WorkingDirectory:     trimmedRepositoryPath,
		EnvironmentVariables: nonInteractiveEnvironment(),
	}); executionError != nil {
		return fmt.Errorf(gitFetchFailureTemplateConstant, trimmedRepositoryPath, executionError)
	}
	return nil
}

// Checkout switches the working tree to branchName, creating a tracking branch from the fetched remote branch when needed.
func (backend *GitBackend) Checkout(executionContext context.Context, repositoryPath string, branchName string) error {
	trimmedRepositoryPath, validationError := requireValue(repositoryPath, ErrRepositoryPathRequired)
	if validationError != nil {
		return validationError
	}
	if len(strings.TrimSpace(branchName)) == 0 {
		return ErrBranchNameRequired
	}
	// Arguments after "--" are pathspecs for checkout, so a leading dash cannot be escaped.
	if strings.HasPrefix(branchName, optionPrefixConstant) {
		return fmt.Errorf(branchNameOptionLikeTemplateConstant, ErrBranchNameOptionLike, branchName)
	}
	if _, executionError := backend.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCheckoutSubcommandConstant, branchName},
		WorkingDirectory: trimmedRepositoryPath,
	}); executionError != nil {
		return fmt.Errorf(gitCheckoutFailureTemplateConstant, branchName, trimmedRepositoryPath, executionError)
	}
	return nil
}

// ListRemoteReferences returns `git ls-remote --heads` output for remoteURL without requiring a local repository.
func (backend *GitBackend) ListRemoteReferences(executionContext context.Context, remoteURL string) (string, error) {
	trimmedRemoteURL, validationError := requireValue(remoteURL, ErrRemoteURLRequired)
	if validationError != nil {
		return "", validationError
	}

	remoteContext, cancel := backend.remoteContext(executionContext)
	defer cancel()

	executionResult, executionError := backend.executor.ExecuteGit(remoteContext, execshell.CommandDetails{
		Arguments:            []string{gitLSRemoteSubcommandConstant, gitHeadsFlagConstant, gitEndOfOptionsConstant, trimmedRemoteURL},
		EnvironmentVariables: nonInteractiveEnvironment(),
	})
	if executionError != nil {
		return "", fmt.Errorf(gitListReferencesFailureTemplateConstant, trimmedRemoteURL, executionError)
	}
	return executionResult.StandardOutput, nil
}

func (backend *GitBackend) remoteContext(executionContext context.Context) (context.Context, context.CancelFunc) {
	if backend.remoteTimeout == 0 {
		return context.WithCancel(executionContext)
	}
	return context.WithTimeout(executionContext, backend.remoteTimeout)
}

func buildRemoteCommandDetails(subcommand string, repositoryPath string, remoteName string, remoteURL string) (execshell.CommandDetails, error) {
	trimmedRepositoryPath, validationError := requireValue(repositoryPath, ErrRepositoryPathRequired)
	if validationError != nil {
		return execshell.CommandDetails{}, validationError
	}
	trimmedRemoteName, validationError := requireValue(remoteName, ErrRemoteNameRequired)
	if validationError != nil {
		return execshell.CommandDetails{}, validationError
	}
	trimmedRemoteURL, validationError := requireValue(remoteURL, ErrRemoteURLRequired)
	if validationError != nil {
		return execshell.CommandDetails{}, validationError
	}
	return execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant, subcommand, gitEndOfOptionsConstant, trimmedRemoteName, trimmedRemoteURL},
		WorkingDirectory: trimmedRepositoryPath,
	}, nil
}

func requireValue(value string, missingError error) (string, error) {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return "", missingError
	}
	return trimmedValue, nil
}

func nonInteractiveEnvironment() map[string]string {
	return map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableValue}
}
