package mirror

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/temirov/branchmirror/internal/gitrepo"
	mirroring "github.com/temirov/branchmirror/internal/mirror"
	flagutils "github.com/temirov/branchmirror/internal/utils/flags"
)

const (
	branchesCommandUseConstant              = "branches <remote-url>"
	branchesCommandShortDescriptionConstant = "List remote branches and the folders mirror would create"
	branchesCommandLongDescriptionConstant  = "branches queries the remote's heads and prints every branch with the sanitized folder name mirror assigns to it. The branch chosen when mirroring without --all-branches is marked primary."
	flagOutputNameConstant                  = "output"
	flagOutputDescriptionConstant           = "Listing format"
	outputFormatTextConstant                = "text"
	outputFormatYAMLConstant                = "yaml"
	textListingLineTemplateConstant         = "%s\t%s"
	textListingPrimaryMarkerConstant        = "\tprimary"
	textListingLineTerminatorConstant       = "\n"
	yamlIndentationConstant                 = 2
	branchListingFailureTemplateConstant    = "unable to list branches of %s: %w"
	branchListingRenderTemplateConstant     = "unable to render branch listing: %w"
)

// BranchesCommandBuilder assembles the branches command.
type BranchesCommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConsoleLoggerProvider        LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        ConfigurationProvider
	GitExecutor                  gitrepo.GitExecutor
}

type branchListing struct {
	Remote   string               `yaml:"remote"`
	Branches []branchListingEntry `yaml:"branches"`
}

type branchListingEntry struct {
	Branch       string `yaml:"branch"`
	Folder       string `yaml:"folder"`
	Primary      bool   `yaml:"primary,omitempty"`
	CollidesWith string `yaml:"collides_with,omitempty"`
}

// Build constructs the branches command.
func (builder *BranchesCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   branchesCommandUseConstant,
		Short: branchesCommandShortDescriptionConstant,
		Long:  branchesCommandLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}

	flagutils.AddChoiceFlag(command.Flags(), nil, flagOutputNameConstant, outputFormatTextConstant, []string{outputFormatTextConstant, outputFormatYAMLConstant}, flagOutputDescriptionConstant)
	command.Flags().Duration(flagRemoteTimeoutNameConstant, defaultRemoteTimeoutConstant, flagRemoteTimeoutDescriptionConstant)

	return command, nil
}

func (builder *BranchesCommandBuilder) run(command *cobra.Command, arguments []string) error {
	remoteURL := strings.TrimSpace(arguments[0])
	if len(remoteURL) == 0 {
		return errRemoteURLRequired
	}

	configuration := resolveConfiguration(builder.ConfigurationProvider)
	if command.Flags().Changed(flagRemoteTimeoutNameConstant) {
		configuration.RemoteTimeout, _ = command.Flags().GetDuration(flagRemoteTimeoutNameConstant)
	}
	outputFormat := command.Flags().Lookup(flagOutputNameConstant).Value.String()

	logger := resolveLogger(builder.LoggerProvider)
	gitExecutor, executorError := resolveGitExecutor(builder.GitExecutor, logger, resolveLogger(builder.ConsoleLoggerProvider), resolveHumanReadableLogging(builder.HumanReadableLoggingProvider))
	if executorError != nil {
		return executorError
	}

	backend, backendError := gitrepo.NewGitBackend(gitrepo.BackendDependencies{GitExecutor: gitExecutor, RemoteTimeout: configuration.RemoteTimeout})
	if backendError != nil {
		return backendError
	}

	executionContext, stop := interruptibleContext(command)
	defer stop()

	referenceListing, listError := backend.ListRemoteReferences(executionContext, remoteURL)
	if listError != nil {
		return fmt.Errorf(branchListingFailureTemplateConstant, remoteURL, listError)
	}

	listing := buildBranchListing(remoteURL, mirroring.ParseBranchNames(referenceListing))
	if renderError := renderBranchListing(command.OutOrStdout(), outputFormat, listing); renderError != nil {
		return fmt.Errorf(branchListingRenderTemplateConstant, renderError)
	}
	return nil
}

func buildBranchListing(remoteURL string, branchNames []string) branchListing {
	primaryBranch := ""
	if selected := mirroring.BranchSelectionPrimary.Select(branchNames); len(selected) > 0 {
		primaryBranch = selected[0]
	}

	listing := branchListing{Remote: remoteURL, Branches: []branchListingEntry{}}
	for _, assignment := range mirroring.AssignFolderNames(branchNames) {
		listing.Branches = append(listing.Branches, branchListingEntry{
			Branch:       assignment.BranchName,
			Folder:       assignment.FolderName,
			Primary:      assignment.BranchName == primaryBranch,
			CollidesWith: assignment.CollidesWith,
		})
	}
	return listing
}

func renderBranchListing(output io.Writer, outputFormat string, listing branchListing) error {
	if outputFormat == outputFormatYAMLConstant {
		encoder := yaml.NewEncoder(output)
		encoder.SetIndent(yamlIndentationConstant)
		if encodeError := encoder.Encode(listing); encodeError != nil {
			return encodeError
		}
		return encoder.Close()
	}

	for _, entry := range listing.Branches {
		line := fmt.Sprintf(textListingLineTemplateConstant, entry.Branch, entry.Folder)
		if entry.Primary {
			line += textListingPrimaryMarkerConstant
		}
		if _, writeError := io.WriteString(output, line+textListingLineTerminatorConstant); writeError != nil {
			return writeError
		}
	}
	return nil
}
