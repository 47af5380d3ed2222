package mirror

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/branchmirror/internal/execshell"
	"github.com/temirov/branchmirror/internal/gitrepo"
	"github.com/temirov/branchmirror/internal/ui"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider yields the loaded mirror configuration.
type ConfigurationProvider func() CommandConfiguration

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveHumanReadableLogging(provider func() bool) bool {
	if provider == nil {
		return false
	}
	return provider()
}

func resolveConfiguration(provider ConfigurationProvider) CommandConfiguration {
	if provider == nil {
		return DefaultCommandConfiguration()
	}
	return provider().sanitize()
}

// resolveGitExecutor returns existing or a shell executor that renders command events on the console logger when requested.
func resolveGitExecutor(existing gitrepo.GitExecutor, logger *zap.Logger, consoleLogger *zap.Logger, humanReadableLogging bool) (gitrepo.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	executorOptions := []execshell.ShellExecutorOption{}
	if humanReadableLogging {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(consoleLogger)))
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), executorOptions...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// interruptibleContext derives a context cancelled on SIGINT or SIGTERM from the command context.
func interruptibleContext(command *cobra.Command) (context.Context, context.CancelFunc) {
	parentContext := command.Context()
	if parentContext == nil {
		parentContext = context.Background()
	}
	return signal.NotifyContext(parentContext, os.Interrupt, syscall.SIGTERM)
}
