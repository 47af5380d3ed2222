package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
	endOfOptionsArgumentConstant            = "--"
)

const (
	gitInitSubcommandNameConstant         = "init"
	gitRemoteSubcommandNameConstant       = "remote"
	gitRemoteAddSubcommandNameConstant    = "add"
	gitRemoteSetURLSubcommandNameConstant = "set-url"
	gitCheckoutSubcommandNameConstant     = "checkout"
	gitFetchSubcommandNameConstant        = "fetch"
	gitFetchAllFlagConstant               = "--all"
	gitLSRemoteSubcommandNameConstant     = "ls-remote"
	gitHeadsFlagConstant                  = "--heads"
)

const (
	gitInitStartTemplateConstant                     = "Initializing repository in %s"
	gitInitSuccessTemplateConstant                   = "Initialized repository in %s"
	gitInitFailureTemplateConstant                   = "Failed to initialize repository in %s (exit code %d%s)"
	gitInitExecutionFailureTemplateConstant          = "Unable to initialize repository in %s: %s"
	gitRemoteListStartTemplateConstant               = "Listing remotes in %s"
	gitRemoteListSuccessTemplateConstant             = "Listed remotes in %s"
	gitRemoteListFailureTemplateConstant             = "Failed to list remotes in %s (exit code %d%s)"
	gitRemoteListExecutionFailureTemplateConstant    = "Unable to list remotes in %s: %s"
	gitRemoteAddStartTemplateConstant                = "Adding %s remote for %s pointing to %s"
	gitRemoteAddSuccessTemplateConstant              = "%s remote for %s points to %s"
	gitRemoteAddFailureTemplateConstant              = "Failed to add %s remote for %s pointing to %s (exit code %d%s)"
	gitRemoteAddExecutionFailureTemplateConstant     = "Unable to add %s remote for %s pointing to %s: %s"
	gitRemoteUpdateStartTemplateConstant             = "Updating %s remote for %s to %s"
	gitRemoteUpdateSuccessTemplateConstant           = "%s remote for %s now points to %s"
	gitRemoteUpdateFailureTemplateConstant           = "Failed to update %s remote for %s to %s (exit code %d%s)"
	gitRemoteUpdateExecutionFailureTemplateConstant  = "Unable to update %s remote for %s to %s: %s"
	gitCheckoutStartTemplateConstant                 = "Switching %s to branch %s"
	gitCheckoutSuccessTemplateConstant               = "%s now on branch %s"
	gitCheckoutFailureTemplateConstant               = "Failed to switch %s to branch %s (exit code %d%s)"
	gitCheckoutExecutionFailureTemplateConstant      = "Unable to switch %s to branch %s: %s"
	gitFetchStartTemplateConstant                    = "Fetching from %s in %s"
	gitFetchSuccessTemplateConstant                  = "Fetched from %s in %s"
	gitFetchFailureTemplateConstant                  = "Failed to fetch from %s in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplateConstant         = "Unable to fetch from %s in %s: %s"
	gitFetchAllRemotesLabelConstant                  = "all remotes"
	gitLSRemoteHeadsStartTemplateConstant            = "Listing branches on %s"
	gitLSRemoteHeadsSuccessTemplateConstant          = "Listed branches on %s"
	gitLSRemoteHeadsFailureTemplateConstant          = "Failed to list branches on %s (exit code %d%s)"
	gitLSRemoteHeadsExecutionFailureTemplateConstant = "Unable to list branches on %s: %s"
	gitLSRemoteStartTemplateConstant                 = "Querying remote references on %s"
	gitLSRemoteSuccessTemplateConstant               = "Queried remote references on %s"
	gitLSRemoteFailureTemplateConstant               = "Failed to query remote references on %s (exit code %d%s)"
	gitLSRemoteExecutionFailureTemplateConstant      = "Unable to query remote references on %s: %s"
)

// stageTemplates holds one message template per lifecycle stage.
type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch strings.TrimSpace(arguments[0]) {
	case gitInitSubcommandNameConstant:
		templates := stageTemplates{
			start:            gitInitStartTemplateConstant,
			success:          gitInitSuccessTemplateConstant,
			failure:          gitInitFailureTemplateConstant,
			executionFailure: gitInitExecutionFailureTemplateConstant,
		}
		return formatter.renderStage(templates, []any{workingDirectory}, result, failure, stage)
	case gitRemoteSubcommandNameConstant:
		return formatter.describeGitRemoteMessage(command, result, failure, stage)
	case gitCheckoutSubcommandNameConstant:
		branchName := formatter.ensureValue(formatter.extractLastNonFlagArgument(arguments[1:]))
		templates := stageTemplates{
			start:            gitCheckoutStartTemplateConstant,
			success:          gitCheckoutSuccessTemplateConstant,
			failure:          gitCheckoutFailureTemplateConstant,
			executionFailure: gitCheckoutExecutionFailureTemplateConstant,
		}
		return formatter.renderStage(templates, []any{workingDirectory, branchName}, result, failure, stage)
	case gitFetchSubcommandNameConstant:
		remoteName := formatter.extractLastNonFlagArgument(arguments[1:])
		if len(remoteName) == 0 || containsArgument(arguments, gitFetchAllFlagConstant) {
			remoteName = gitFetchAllRemotesLabelConstant
		}
		templates := stageTemplates{
			start:            gitFetchStartTemplateConstant,
			success:          gitFetchSuccessTemplateConstant,
			failure:          gitFetchFailureTemplateConstant,
			executionFailure: gitFetchExecutionFailureTemplateConstant,
		}
		return formatter.renderStage(templates, []any{remoteName, workingDirectory}, result, failure, stage)
	case gitLSRemoteSubcommandNameConstant:
		remoteLocation := formatter.ensureValue(formatter.extractLastNonFlagArgument(arguments[1:]))
		templates := stageTemplates{
			start:            gitLSRemoteStartTemplateConstant,
			success:          gitLSRemoteSuccessTemplateConstant,
			failure:          gitLSRemoteFailureTemplateConstant,
			executionFailure: gitLSRemoteExecutionFailureTemplateConstant,
		}
		if containsArgument(arguments, gitHeadsFlagConstant) {
			templates = stageTemplates{
				start:            gitLSRemoteHeadsStartTemplateConstant,
				success:          gitLSRemoteHeadsSuccessTemplateConstant,
				failure:          gitLSRemoteHeadsFailureTemplateConstant,
				executionFailure: gitLSRemoteHeadsExecutionFailureTemplateConstant,
			}
		}
		return formatter.renderStage(templates, []any{remoteLocation}, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRemoteMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	if len(arguments) == 1 {
		templates := stageTemplates{
			start:            gitRemoteListStartTemplateConstant,
			success:          gitRemoteListSuccessTemplateConstant,
			failure:          gitRemoteListFailureTemplateConstant,
			executionFailure: gitRemoteListExecutionFailureTemplateConstant,
		}
		return formatter.renderStage(templates, []any{workingDirectory}, result, failure, stage)
	}

	operands := arguments[2:]
	if len(operands) > 0 && strings.TrimSpace(operands[0]) == endOfOptionsArgumentConstant {
		operands = operands[1:]
	}
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(operands, 0))
	remoteURL := formatter.ensureValue(formatter.argumentAtIndex(operands, 1))

	switch strings.TrimSpace(arguments[1]) {
	case gitRemoteAddSubcommandNameConstant:
		templates := stageTemplates{
			start:            gitRemoteAddStartTemplateConstant,
			success:          gitRemoteAddSuccessTemplateConstant,
			failure:          gitRemoteAddFailureTemplateConstant,
			executionFailure: gitRemoteAddExecutionFailureTemplateConstant,
		}
		return formatter.renderStage(templates, []any{remoteName, workingDirectory, remoteURL}, result, failure, stage)
	case gitRemoteSetURLSubcommandNameConstant:
		templates := stageTemplates{
			start:            gitRemoteUpdateStartTemplateConstant,
			success:          gitRemoteUpdateSuccessTemplateConstant,
			failure:          gitRemoteUpdateFailureTemplateConstant,
			executionFailure: gitRemoteUpdateExecutionFailureTemplateConstant,
		}
		return formatter.renderStage(templates, []any{remoteName, workingDirectory, remoteURL}, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

// renderStage formats the template for the stage; failure stages append exit code and stderr or the failure text.
func (formatter CommandMessageFormatter) renderStage(templates stageTemplates, values []any, result ExecutionResult, failure error, stage messageStage) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, values...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, values...)
	case messageStageFailure:
		failureValues := append(append([]any{}, values...), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(templates.failure, failureValues...)
	case messageStageExecutionFailure:
		failureValues := append(append([]any{}, values...), formatter.describeFailure(failure))
		return fmt.Sprintf(templates.executionFailure, failureValues...)
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := describeCommand(command)
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return commandLabel
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory))
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return arguments[index]
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) extractLastNonFlagArgument(arguments []string) string {
	for index := len(arguments) - 1; index >= 0; index-- {
		trimmed := strings.TrimSpace(arguments[index])
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		return trimmed
	}
	return emptyStringConstant
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
