// Package mirror provides the mirror and branches commands, which resolve
// configuration and flags, wire the git backend and hand the work to the
// repository mirrorer.
package mirror
