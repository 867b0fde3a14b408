package filesystem

import (
	"strings"

	"golang.org/x/sys/windows"

	"github.com/mutagen-io/fsmeta/pkg/logging"
)

const (
	// shortcutsByDefault indicates whether or not engines treat shell shortcut
	// files as links by default.
	shortcutsByDefault = true
	// caseInsensitiveNames indicates whether or not name filters ignore case.
	caseInsensitiveNames = true
)

// driveMetadata creates the metadata for a drive root.
func driveMetadata(drive *DriveInfo) *Metadata {
	metadata := &Metadata{}
	metadata.SetExists(true)
	metadata.SetType(FileTypeDirectory)
	metadata.SetLinkKind(LinkKindNone)
	metadata.SetAttributes(AttributeDriveRoot)
	metadata.setDrive(drive)
	return metadata
}

// drives returns one root per logical drive, followed by mapped network
// drives that aren't present in the logical drive mask. Mapped drives carry
// their connection state, and disconnected drives have every field marked
// known so that they aren't queried (which would block on the network).
func drives(_ Backend, logger *logging.Logger) ([]Child, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, newError("get logical drives", "", err)
	}

	// Enumerate logical drives.
	var result []Child
	indices := make(map[byte]int)
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		letter := byte('A' + i)
		indices[letter] = len(result)
		result = append(result, Child{
			Entry:    NewEntry(string(letter) + `:\`),
			Metadata: driveMetadata(&DriveInfo{Letter: letter, Connected: true}),
		})
	}

	// Merge mapped network drives.
	for _, drive := range enumerateMappedDrives(loadCapabilities(logger), logger) {
		var metadata *Metadata
		if index, ok := indices[drive.Letter]; ok {
			metadata = result[index].Metadata
			metadata.setDrive(drive)
		} else {
			metadata = driveMetadata(drive)
			metadata.SetSize(0)
			result = append(result, Child{
				Entry:    NewEntry(string(drive.Letter) + `:\`),
				Metadata: metadata,
			})
		}
		if !drive.Connected {
			metadata.markAllKnown()
		}
	}
	return result, nil
}

// shares lists the disk shares of a server. The server may be given with or
// without its leading separators.
func shares(server string, logger *logging.Logger) ([]string, error) {
	name := strings.TrimLeft(server, `\/`)
	if name == "" {
		return nil, newKindError(ErrorKindInvalidPath, "enumerate shares", server, "empty server name")
	}
	return listShares(loadCapabilities(logger), `\\`+name)
}

// lookupOwnerName resolves a SID to its account name.
func lookupOwnerName(identifier string, _ OwnerKind) (string, error) {
	return accountName(identifier)
}
