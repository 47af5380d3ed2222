package mirror

import (
	"context"
	"fmt"
	"strings"
)

const (
	originRemoteNameConstant             = "origin"
	listRemotesFailureTemplateConstant   = "failed to inspect remotes: %w"
	repointOriginFailureTemplateConstant = "failed to repoint origin: %w"
	addOriginFailureTemplateConstant     = "failed to add origin: %w"
)

// ConfigureOriginRemote points origin at remoteURL, updating it when present and adding it otherwise.
func ConfigureOriginRemote(executionContext context.Context, backend RepositoryBackend, repositoryPath string, remoteURL string) error {
	remoteListing, listError := backend.ListRemotes(executionContext, repositoryPath)
	if listError != nil {
		return fmt.Errorf(listRemotesFailureTemplateConstant, listError)
	}

	if hasRemote(remoteListing, originRemoteNameConstant) {
		if setError := backend.SetRemoteURL(executionContext, repositoryPath, originRemoteNameConstant, remoteURL); setError != nil {
			return fmt.Errorf(repointOriginFailureTemplateConstant, setError)
		}
		return nil
	}

	if addError := backend.AddRemote(executionContext, repositoryPath, originRemoteNameConstant, remoteURL); addError != nil {
		return fmt.Errorf(addOriginFailureTemplateConstant, addError)
	}
	return nil
}

func hasRemote(remoteListing string, remoteName string) bool {
	for _, line := range strings.Split(remoteListing, listingLineSeparatorConstant) {
		if strings.TrimSpace(line) == remoteName {
			return true
		}
	}
	return false
}
