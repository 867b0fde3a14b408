//go:build !windows

package filesystem

import (
	"os/user"

	"github.com/pkg/errors"

	"github.com/mutagen-io/fsmeta/pkg/logging"
)

const (
	// shortcutsByDefault indicates whether or not engines treat shell shortcut
	// files as links by default.
	shortcutsByDefault = false
	// caseInsensitiveNames indicates whether or not name filters ignore case.
	caseInsensitiveNames = false
)

// drives returns the single filesystem root.
func drives(backend Backend, _ *logging.Logger) ([]Child, error) {
	root := RootPath()
	metadata, err := backend.Query(root, FieldStat)
	if err != nil {
		return nil, err
	}
	metadata.setDrive(&DriveInfo{Connected: true})
	return []Child{{Entry: root, Metadata: metadata}}, nil
}

// shares is unsupported on POSIX systems.
func shares(server string, _ *logging.Logger) ([]string, error) {
	return nil, newKindError(ErrorKindUnsupportedOperation, "enumerate shares", server, "network shares are only supported on Windows")
}

// lookupOwnerName resolves a numeric user or group identifier to its name.
// Identifiers without a name resolve to an empty name.
func lookupOwnerName(identifier string, kind OwnerKind) (string, error) {
	if kind == OwnerGroup {
		group, err := user.LookupGroupId(identifier)
		if err != nil {
			if _, ok := err.(user.UnknownGroupIdError); ok {
				return "", nil
			}
			return "", errors.Wrap(err, "unable to look up group")
		}
		return group.Name, nil
	}
	account, err := user.LookupId(identifier)
	if err != nil {
		if _, ok := err.(user.UnknownUserIdError); ok {
			return "", nil
		}
		return "", errors.Wrap(err, "unable to look up user")
	}
	return account.Username, nil
}

// setPermissions applies the owner, group, and other triples as a POSIX mode.
func setPermissions(path string, permissions Permissions) error {
	if err := chmodRetryingOnEINTR(path, uint32(permissions.Mode())); err != nil {
		return newError("chmod", path, err)
	}
	return nil
}
