package pathutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	tildeSymbolConstant                = "~"
	tildeForwardSlashPrefixConstant    = "~/"
	emptyPathMessageConstant           = "path is empty"
	homeDirectoryErrorTemplateConstant = "unable to resolve home directory for %q: %w"
	absolutePathErrorTemplateConstant  = "unable to resolve absolute path for %q: %w"
)

// ErrEmptyPath indicates Resolve received a blank path.
var ErrEmptyPath = errors.New(emptyPathMessageConstant)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// AbsolutePathProvider converts a relative path into an absolute one.
type AbsolutePathProvider func(string) (string, error)

// Resolver expands a leading "~" and returns cleaned absolute paths.
type Resolver struct {
	homeDirectoryProvider HomeDirectoryProvider
	absolutePathProvider  AbsolutePathProvider
}

// NewResolver constructs a Resolver backed by the operating system.
func NewResolver() *Resolver {
	return NewResolverWithProviders(os.UserHomeDir, filepath.Abs)
}

// NewResolverWithProviders constructs a Resolver with custom lookups; nil providers fall back to the operating system.
func NewResolverWithProviders(homeDirectoryProvider HomeDirectoryProvider, absolutePathProvider AbsolutePathProvider) *Resolver {
	if homeDirectoryProvider == nil {
		homeDirectoryProvider = os.UserHomeDir
	}
	if absolutePathProvider == nil {
		absolutePathProvider = filepath.Abs
	}
	return &Resolver{homeDirectoryProvider: homeDirectoryProvider, absolutePathProvider: absolutePathProvider}
}

// Resolve expands "~" and "~/..." against the home directory and makes the result absolute.
// Other "~user" forms are left untouched and treated as relative names.
func (resolver *Resolver) Resolve(candidatePath string) (string, error) {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return "", ErrEmptyPath
	}

	expandedPath, expansionError := resolver.expandHome(trimmedPath)
	if expansionError != nil {
		return "", expansionError
	}

	absolutePath, absoluteError := resolver.absolutePathProvider(expandedPath)
	if absoluteError != nil {
		return "", fmt.Errorf(absolutePathErrorTemplateConstant, candidatePath, absoluteError)
	}
	return filepath.Clean(absolutePath), nil
}

func (resolver *Resolver) expandHome(candidatePath string) (string, error) {
	tildeWithSeparatorPrefix := tildeSymbolConstant + string(os.PathSeparator)
	hasHomePrefix := candidatePath == tildeSymbolConstant ||
		strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant) ||
		strings.HasPrefix(candidatePath, tildeWithSeparatorPrefix)
	if !hasHomePrefix {
		return candidatePath, nil
	}

	homeDirectory, homeError := resolver.homeDirectoryProvider()
	if homeError != nil {
		return "", fmt.Errorf(homeDirectoryErrorTemplateConstant, candidatePath, homeError)
	}
	if candidatePath == tildeSymbolConstant {
		return homeDirectory, nil
	}
	return filepath.Join(homeDirectory, candidatePath[len(tildeSymbolConstant)+1:]), nil
}
