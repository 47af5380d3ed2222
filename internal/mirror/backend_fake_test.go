package mirror_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	fakeOperationInit           = "init"
	fakeOperationListRemotes    = "list-remotes"
	fakeOperationSetRemoteURL   = "set-url"
	fakeOperationAddRemote      = "add-remote"
	fakeOperationFetch          = "fetch"
	fakeOperationCheckout       = "checkout"
	fakeOperationListReferences = "ls-remote"
	fakeCheckedOutBranchFile    = "CHECKED_OUT_BRANCH"
)

type recordedBackendCall struct {
	operation string
	path      string
	argument  string
}

// fakeBackend keeps remotes in memory and writes a marker file on checkout.
type fakeBackend struct {
	mutex             sync.Mutex
	calls             []recordedBackendCall
	remotes           map[string]map[string]string
	referenceListing  string
	listError         error
	fetchError        error
	checkoutFailures  map[string]error
	listingDelay      time.Duration
	activeListings    int
	maxActiveListings int
}

func newFakeBackend(referenceListing string) *fakeBackend {
	return &fakeBackend{
		remotes:          make(map[string]map[string]string),
		referenceListing: referenceListing,
		checkoutFailures: make(map[string]error),
	}
}

func (backend *fakeBackend) record(operation string, path string, argument string) {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	backend.calls = append(backend.calls, recordedBackendCall{operation: operation, path: path, argument: argument})
}

func (backend *fakeBackend) recordedCalls() []recordedBackendCall {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	return append([]recordedBackendCall(nil), backend.calls...)
}

func (backend *fakeBackend) operationsFor(operation string) []recordedBackendCall {
	var matching []recordedBackendCall
	for _, call := range backend.recordedCalls() {
		if call.operation == operation {
			matching = append(matching, call)
		}
	}
	return matching
}

func (backend *fakeBackend) remotesOf(path string) map[string]string {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	copied := make(map[string]string, len(backend.remotes[path]))
	for name, url := range backend.remotes[path] {
		copied[name] = url
	}
	return copied
}

func (backend *fakeBackend) InitRepository(_ context.Context, repositoryPath string) error {
	backend.record(fakeOperationInit, repositoryPath, "")
	return nil
}

func (backend *fakeBackend) ListRemotes(_ context.Context, repositoryPath string) (string, error) {
	backend.record(fakeOperationListRemotes, repositoryPath, "")
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	names := make([]string, 0, len(backend.remotes[repositoryPath]))
	for name := range backend.remotes[repositoryPath] {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return "", nil
	}
	return strings.Join(names, "\n") + "\n", nil
}

func (backend *fakeBackend) SetRemoteURL(_ context.Context, repositoryPath string, remoteName string, remoteURL string) error {
	backend.record(fakeOperationSetRemoteURL, repositoryPath, remoteURL)
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	if _, exists := backend.remotes[repositoryPath][remoteName]; !exists {
		return errors.New("error: No such remote '" + remoteName + "'")
	}
	backend.remotes[repositoryPath][remoteName] = remoteURL
	return nil
}

func (backend *fakeBackend) AddRemote(_ context.Context, repositoryPath string, remoteName string, remoteURL string) error {
	backend.record(fakeOperationAddRemote, repositoryPath, remoteURL)
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	if _, exists := backend.remotes[repositoryPath][remoteName]; exists {
		return errors.New("error: remote " + remoteName + " already exists.")
	}
	if backend.remotes[repositoryPath] == nil {
		backend.remotes[repositoryPath] = make(map[string]string)
	}
	backend.remotes[repositoryPath][remoteName] = remoteURL
	return nil
}

func (backend *fakeBackend) Fetch(_ context.Context, repositoryPath string) error {
	backend.record(fakeOperationFetch, repositoryPath, "")
	return backend.fetchError
}

func (backend *fakeBackend) Checkout(_ context.Context, repositoryPath string, branchName string) error {
	backend.record(fakeOperationCheckout, repositoryPath, branchName)
	if checkoutFailure, failing := backend.checkoutFailures[branchName]; failing {
		return checkoutFailure
	}
	return os.WriteFile(filepath.Join(repositoryPath, fakeCheckedOutBranchFile), []byte(branchName), 0o644)
}

func (backend *fakeBackend) ListRemoteReferences(_ context.Context, remoteURL string) (string, error) {
	backend.record(fakeOperationListReferences, "", remoteURL)

	backend.mutex.Lock()
	backend.activeListings++
	if backend.activeListings > backend.maxActiveListings {
		backend.maxActiveListings = backend.activeListings
	}
	backend.mutex.Unlock()

	if backend.listingDelay > 0 {
		time.Sleep(backend.listingDelay)
	}

	backend.mutex.Lock()
	backend.activeListings--
	backend.mutex.Unlock()

	if backend.listError != nil {
		return "", backend.listError
	}
	return backend.referenceListing, nil
}
