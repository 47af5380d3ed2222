package mirror

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/branchmirror/internal/filesystem"
	"github.com/temirov/branchmirror/internal/gitrepo"
	mirroring "github.com/temirov/branchmirror/internal/mirror"
	flagutils "github.com/temirov/branchmirror/internal/utils/flags"
	pathutils "github.com/temirov/branchmirror/internal/utils/path"
)

const (
	mirrorCommandUseConstant                 = "mirror <remote-url>"
	mirrorCommandShortDescriptionConstant    = "Mirror a remote repository with one folder per branch"
	mirrorCommandLongDescriptionConstant     = "mirror clones a remote repository into <root>/<name>, giving every selected branch its own independent checkout. Existing branch folders are left untouched."
	flagRootNameConstant                     = "root"
	flagRootDescriptionConstant              = "Directory that receives the repository folder"
	flagNameNameConstant                     = "name"
	flagNameDescriptionConstant              = "Repository folder name (defaults to the repository name in the URL)"
	flagAllBranchesNameConstant              = "all-branches"
	flagAllBranchesDescriptionConstant       = "Mirror every remote branch instead of only main or master"
	flagRemoteTimeoutNameConstant            = "remote-timeout"
	flagRemoteTimeoutDescriptionConstant     = "Upper bound for each fetch and ls-remote call (0 disables)"
	flagStrictNameConstant                   = "strict"
	flagStrictDescriptionConstant            = "Exit with an error when any branch fails to materialize"
	flagMetricsFileNameConstant              = "metrics-file"
	flagMetricsFileDescriptionConstant       = "Write Prometheus metrics in text format to this file after the run"
	metricsNamespaceConstant                 = "branchmirror"
	mirrorIncompleteMessageConstant          = "mirror incomplete"
	remoteURLRequiredMessageConstant         = "remote url must be provided"
	invalidRepositoryNameMessageConstant     = "repository folder name must be a single path segment"
	invalidRepositoryNameTemplateConstant    = "%w: %q"
	pathSeparatorCharactersConstant          = "/\\"
	currentDirectoryNameConstant             = "."
	parentDirectoryNameConstant              = ".."
	repositoryNameDerivationTemplateConstant = "unable to derive repository folder name, pass --name: %w"
	rootResolutionTemplateConstant           = "unable to resolve root %q: %w"
	repositoryFailureTemplateConstant        = "%w: %v"
	branchFailuresTemplateConstant           = "%w: %d of %d branches failed"
	metricsExportTemplateConstant            = "unable to export metrics: %w"
	mirrorSummaryTemplateConstant            = "%s: %d done, %d skipped, %d failed\n"
	mirrorAbortedSummaryTemplateConstant     = "%s: aborted: %v\n"
	logFieldMetricsFileConstant              = "metrics_file"
	metricsWrittenLogMessageConstant         = "Wrote mirror metrics"
)

// ErrMirrorIncomplete reports a strict run in which the repository or a branch failed.
var ErrMirrorIncomplete = errors.New(mirrorIncompleteMessageConstant)

// ErrInvalidRepositoryName reports a --name value that would place the repository outside the root.
var ErrInvalidRepositoryName = errors.New(invalidRepositoryNameMessageConstant)

var errRemoteURLRequired = errors.New(remoteURLRequiredMessageConstant)

// MirrorCommandBuilder assembles the mirror command.
type MirrorCommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConsoleLoggerProvider        LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        ConfigurationProvider
	GitExecutor                  gitrepo.GitExecutor
	FileSystem                   mirroring.FileSystem
	PathResolver                 *pathutils.Resolver
}

type mirrorCommandOptions struct {
	mirrorOptions mirroring.MirrorOptions
	configuration CommandConfiguration
}

// Build constructs the mirror command.
func (builder *MirrorCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   mirrorCommandUseConstant,
		Short: mirrorCommandShortDescriptionConstant,
		Long:  mirrorCommandLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()
	command.Flags().String(flagRootNameConstant, defaults.Root, flagRootDescriptionConstant)
	command.Flags().String(flagNameNameConstant, "", flagNameDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), nil, flagAllBranchesNameConstant, defaults.AllBranches, flagAllBranchesDescriptionConstant)
	command.Flags().Duration(flagRemoteTimeoutNameConstant, defaults.RemoteTimeout, flagRemoteTimeoutDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), nil, flagStrictNameConstant, defaults.Strict, flagStrictDescriptionConstant)
	command.Flags().String(flagMetricsFileNameConstant, defaults.MetricsFile, flagMetricsFileDescriptionConstant)

	return command, nil
}

func (builder *MirrorCommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.parseOptions(command, arguments)
	if optionsError != nil {
		return optionsError
	}

	logger := resolveLogger(builder.LoggerProvider)
	gitExecutor, executorError := resolveGitExecutor(builder.GitExecutor, logger, resolveLogger(builder.ConsoleLoggerProvider), resolveHumanReadableLogging(builder.HumanReadableLoggingProvider))
	if executorError != nil {
		return executorError
	}

	backend, backendError := gitrepo.NewGitBackend(gitrepo.BackendDependencies{GitExecutor: gitExecutor, RemoteTimeout: options.configuration.RemoteTimeout})
	if backendError != nil {
		return backendError
	}

	var metrics *mirroring.Metrics
	if len(options.configuration.MetricsFile) > 0 {
		createdMetrics, metricsError := mirroring.NewMetrics(metricsNamespaceConstant)
		if metricsError != nil {
			return metricsError
		}
		metrics = createdMetrics
	}

	mirrorer, mirrorerError := mirroring.NewRepositoryMirrorer(mirroring.MirrorerDependencies{
		Backend:    backend,
		FileSystem: builder.resolveFileSystem(),
		Logger:     logger,
		Metrics:    metrics,
	})
	if mirrorerError != nil {
		return mirrorerError
	}

	executionContext, stop := interruptibleContext(command)
	defer stop()

	report := mirrorer.Mirror(executionContext, options.mirrorOptions)
	printMirrorSummary(command, report)

	if metrics != nil {
		if exportError := metrics.WriteTextfile(options.configuration.MetricsFile); exportError != nil {
			return fmt.Errorf(metricsExportTemplateConstant, exportError)
		}
		logger.Debug(metricsWrittenLogMessageConstant, zap.String(logFieldMetricsFileConstant, options.configuration.MetricsFile))
	}

	if !options.configuration.Strict {
		return nil
	}
	if report.Failure != nil {
		return fmt.Errorf(repositoryFailureTemplateConstant, ErrMirrorIncomplete, report.Failure)
	}
	if report.HasFailures() {
		return fmt.Errorf(branchFailuresTemplateConstant, ErrMirrorIncomplete, report.FailedCount(), len(report.Outcomes))
	}
	return nil
}

func (builder *MirrorCommandBuilder) parseOptions(command *cobra.Command, arguments []string) (mirrorCommandOptions, error) {
	remoteURL := strings.TrimSpace(arguments[0])
	if len(remoteURL) == 0 {
		return mirrorCommandOptions{}, errRemoteURLRequired
	}

	configuration := resolveConfiguration(builder.ConfigurationProvider)
	flagSet := command.Flags()

	if flagSet.Changed(flagRootNameConstant) {
		configuration.Root, _ = flagSet.GetString(flagRootNameConstant)
	}
	if flagSet.Changed(flagRemoteTimeoutNameConstant) {
		configuration.RemoteTimeout, _ = flagSet.GetDuration(flagRemoteTimeoutNameConstant)
	}
	if flagSet.Changed(flagMetricsFileNameConstant) {
		configuration.MetricsFile, _ = flagSet.GetString(flagMetricsFileNameConstant)
	}
	configuration.AllBranches = changedToggleValue(command, flagAllBranchesNameConstant, configuration.AllBranches)
	configuration.Strict = changedToggleValue(command, flagStrictNameConstant, configuration.Strict)
	configuration = configuration.sanitize()

	rootPath, rootError := builder.resolvePathResolver().Resolve(configuration.Root)
	if rootError != nil {
		return mirrorCommandOptions{}, fmt.Errorf(rootResolutionTemplateConstant, configuration.Root, rootError)
	}

	repositoryName, _ := flagSet.GetString(flagNameNameConstant)
	repositoryName = strings.TrimSpace(repositoryName)
	if len(repositoryName) == 0 {
		derivedName, derivationError := gitrepo.RepositoryNameFromRemoteURL(remoteURL)
		if derivationError != nil {
			return mirrorCommandOptions{}, fmt.Errorf(repositoryNameDerivationTemplateConstant, derivationError)
		}
		repositoryName = derivedName
	}
	if !isSinglePathSegment(repositoryName) {
		return mirrorCommandOptions{}, fmt.Errorf(invalidRepositoryNameTemplateConstant, ErrInvalidRepositoryName, repositoryName)
	}

	return mirrorCommandOptions{
		mirrorOptions: mirroring.MirrorOptions{
			RemoteURL:      remoteURL,
			RootPath:       rootPath,
			RepositoryName: repositoryName,
			Policy:         mirroring.BranchSelectionPolicyFromBool(configuration.AllBranches),
		},
		configuration: configuration,
	}, nil
}

func (builder *MirrorCommandBuilder) resolveFileSystem() mirroring.FileSystem {
	if builder.FileSystem != nil {
		return builder.FileSystem
	}
	return filesystem.OSFileSystem{}
}

func (builder *MirrorCommandBuilder) resolvePathResolver() *pathutils.Resolver {
	if builder.PathResolver != nil {
		return builder.PathResolver
	}
	return pathutils.NewResolver()
}

func isSinglePathSegment(name string) bool {
	if name == currentDirectoryNameConstant || name == parentDirectoryNameConstant {
		return false
	}
	return !strings.ContainsAny(name, pathSeparatorCharactersConstant)
}

func changedToggleValue(command *cobra.Command, flagName string, fallback bool) bool {
	flag := command.Flags().Lookup(flagName)
	if flag == nil || !flag.Changed {
		return fallback
	}
	parsedValue, parseError := flagutils.ParseToggle(flag.Value.String())
	if parseError != nil {
		return fallback
	}
	return parsedValue
}

func printMirrorSummary(command *cobra.Command, report mirroring.MirrorReport) {
	if report.Failure != nil {
		fmt.Fprintf(command.OutOrStdout(), mirrorAbortedSummaryTemplateConstant, report.RepositoryPath, report.Failure)
		return
	}
	fmt.Fprintf(command.OutOrStdout(), mirrorSummaryTemplateConstant, report.RepositoryPath, report.DoneCount(), report.SkippedCount(), report.FailedCount())
}
