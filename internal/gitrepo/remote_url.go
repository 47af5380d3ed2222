package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	sshUserDelimiterConstant            = "@"
	sshPathDelimiterConstant            = ":"
	httpsProtocolPrefixConstant         = "https://"
	gitUserPrefixConstant               = "git@"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	invalidRemoteURLMessageConstant     = "invalid remote url"
	requiredValueMessageConstant        = "value required"
	missingRepositoryMessageConstant    = "remote url does not name a repository"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol RemoteProtocol
	Host     string
	// Namespace holds the owner and any nested groups, joined by slashes.
	Namespace  string
	Repository string
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRemoteURL converts an SSH or HTTPS remote URL into a structured representation.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	switch {
	case strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant):
		return parseSSHRemote(remote, strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, gitUserPrefixConstant):
		return parseSSHRemote(remote, trimmedRemote)
	case strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant):
		return parseHTTPSRemote(remote, strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant))
	default:
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
}

// RepositoryNameFromRemoteURL returns the repository segment of the remote without the .git suffix.
func RepositoryNameFromRemoteURL(remote string) (string, error) {
	parsedRemote, parseError := ParseRemoteURL(remote)
	if parseError != nil {
		return "", parseError
	}
	return parsedRemote.Repository, nil
}

func parseSSHRemote(originalRemote string, remote string) (RemoteURL, error) {
	userSplitIndex := strings.Index(remote, sshUserDelimiterConstant)
	if userSplitIndex == -1 {
		return RemoteURL{}, RemoteURLParseError{Input: originalRemote, Message: invalidRemoteURLMessageConstant}
	}
	hostAndPath := remote[userSplitIndex+1:]

	slashIndex := strings.Index(hostAndPath, pathSeparatorConstant)
	colonIndex := strings.Index(hostAndPath, sshPathDelimiterConstant)

	var host string
	var path string
	switch {
	case colonIndex != -1 && (slashIndex == -1 || colonIndex < slashIndex) && !isPortPrefixed(hostAndPath[colonIndex+1:]):
		host = hostAndPath[:colonIndex]
		path = hostAndPath[colonIndex+1:]
	case slashIndex != -1:
		host = hostAndPath[:slashIndex]
		path = hostAndPath[slashIndex+1:]
	default:
		return RemoteURL{}, RemoteURLParseError{Input: originalRemote, Message: invalidRemoteURLMessageConstant}
	}

	return buildRemoteURL(originalRemote, RemoteProtocolSSH, host, path)
}

func parseHTTPSRemote(originalRemote string, remote string) (RemoteURL, error) {
	slashIndex := strings.Index(remote, pathSeparatorConstant)
	if slashIndex == -1 {
		return RemoteURL{}, RemoteURLParseError{Input: originalRemote, Message: invalidRemoteURLMessageConstant}
	}
	host := remote[:slashIndex]
	if userSplitIndex := strings.LastIndex(host, sshUserDelimiterConstant); userSplitIndex != -1 {
		host = host[userSplitIndex+1:]
	}
	return buildRemoteURL(originalRemote, RemoteProtocolHTTPS, host, remote[slashIndex+1:])
}

func buildRemoteURL(originalRemote string, protocol RemoteProtocol, host string, path string) (RemoteURL, error) {
	if len(strings.TrimSpace(host)) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: originalRemote, Message: invalidRemoteURLMessageConstant}
	}

	trimmedPath := strings.Trim(path, pathSeparatorConstant)
	lastSeparatorIndex := strings.LastIndex(trimmedPath, pathSeparatorConstant)
	if lastSeparatorIndex == -1 {
		return RemoteURL{}, RemoteURLParseError{Input: originalRemote, Message: missingRepositoryMessageConstant}
	}

	namespace := trimmedPath[:lastSeparatorIndex]
	repository := strings.TrimSuffix(trimmedPath[lastSeparatorIndex+1:], gitSuffixConstant)
	if len(namespace) == 0 || len(repository) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: originalRemote, Message: missingRepositoryMessageConstant}
	}

	return RemoteURL{Protocol: protocol, Host: host, Namespace: namespace, Repository: repository}, nil
}

// isPortPrefixed reports whether the text after a colon begins with a numeric port followed by a slash.
func isPortPrefixed(afterColon string) bool {
	slashIndex := strings.Index(afterColon, pathSeparatorConstant)
	if slashIndex <= 0 {
		return false
	}
	for _, character := range afterColon[:slashIndex] {
		if character < '0' || character > '9' {
			return false
		}
	}
	return true
}
