// Package pathutils resolves user-supplied directory arguments into absolute paths.
package pathutils
