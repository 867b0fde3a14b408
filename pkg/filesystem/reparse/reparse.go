// Package reparse decodes Windows REPARSE_DATA_BUFFER structures, as returned
// by FSCTL_GET_REPARSE_POINT, for symbolic links and mount points (junctions).
// Decoding is bounds-checked and platform independent.
package reparse

import (
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"

	"github.com/mutagen-io/fsmeta/pkg/filesystem/internal/longpath"
)

const (
	// TagMountPoint is IO_REPARSE_TAG_MOUNT_POINT, used for junctions and
	// volume mount points.
	TagMountPoint = 0xA0000003
	// TagSymlink is IO_REPARSE_TAG_SYMLINK.
	TagSymlink = 0xA000000C

	// symlinkFlagRelative is SYMLINK_FLAG_RELATIVE.
	symlinkFlagRelative = 0x1

	// headerSize is the size of the common reparse header: tag, data length,
	// and a reserved field.
	headerSize = 8
	// mountPointFixedSize is the size of the fixed portion of a mount point
	// buffer following the header.
	mountPointFixedSize = 8
	// symlinkFixedSize is the size of the fixed portion of a symbolic link
	// buffer following the header.
	symlinkFixedSize = 12

	// MaximumSize is MAXIMUM_REPARSE_DATA_BUFFER_SIZE.
	MaximumSize = 16 * 1024
)

var (
	// ErrTruncated indicates that a buffer is shorter than its own length
	// fields claim.
	ErrTruncated = errors.New("truncated reparse buffer")
	// ErrUnsupportedTag indicates a reparse tag other than a symbolic link or
	// mount point.
	ErrUnsupportedTag = errors.New("unsupported reparse tag")
)

// Data is a decoded reparse buffer.
type Data struct {
	// Tag is the reparse tag.
	Tag uint32
	// SubstituteName is the target in NT namespace form, for example
	// \??\C:\target.
	SubstituteName string
	// PrintName is the user-facing form of the target. It may be empty.
	PrintName string
	// Relative indicates a symbolic link with a relative target.
	Relative bool
}

// IsSymlink reports whether or not the data describes a symbolic link.
func (d *Data) IsSymlink() bool {
	return d.Tag == TagSymlink
}

// Target returns the link target in normal Win32 form. Device namespace
// prefixes (\??\ and \\?\) are removed from absolute targets. Relative
// symbolic link targets are returned unmodified.
func (d *Data) Target() string {
	if d.Relative {
		return d.SubstituteName
	}
	return longpath.Strip(d.SubstituteName)
}

// utf16Decoder decodes little-endian UTF-16 without a byte order mark.
var utf16Decoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// decodeName extracts a UTF-16 name from the path buffer. Offsets and lengths
// are in bytes, as stored in the reparse buffer.
func decodeName(pathBuffer []byte, offset, length uint16) (string, error) {
	start, end := int(offset), int(offset)+int(length)
	if length%2 != 0 {
		return "", errors.New("odd name length in reparse buffer")
	} else if end > len(pathBuffer) {
		return "", ErrTruncated
	}
	decoded, err := utf16Decoder.NewDecoder().Bytes(pathBuffer[start:end])
	if err != nil {
		return "", errors.Wrap(err, "unable to decode name")
	}
	return strings.TrimRight(string(decoded), "\x00"), nil
}

// Parse decodes a reparse buffer.
func Parse(buffer []byte) (*Data, error) {
	if len(buffer) < headerSize {
		return nil, ErrTruncated
	}
	tag := binary.LittleEndian.Uint32(buffer[0:4])
	dataLength := int(binary.LittleEndian.Uint16(buffer[4:6]))
	if headerSize+dataLength > len(buffer) {
		return nil, ErrTruncated
	}
	body := buffer[headerSize : headerSize+dataLength]

	// Determine the size of the fixed portion for this tag.
	var fixed int
	switch tag {
	case TagMountPoint:
		fixed = mountPointFixedSize
	case TagSymlink:
		fixed = symlinkFixedSize
	default:
		return nil, errors.Wrapf(ErrUnsupportedTag, "tag 0x%08x", tag)
	}
	if len(body) < fixed {
		return nil, ErrTruncated
	}

	// Extract the name locations.
	substituteOffset := binary.LittleEndian.Uint16(body[0:2])
	substituteLength := binary.LittleEndian.Uint16(body[2:4])
	printOffset := binary.LittleEndian.Uint16(body[4:6])
	printLength := binary.LittleEndian.Uint16(body[6:8])
	result := &Data{Tag: tag}
	if tag == TagSymlink {
		result.Relative = binary.LittleEndian.Uint32(body[8:12])&symlinkFlagRelative != 0
	}
	pathBuffer := body[fixed:]

	// Decode the names.
	var err error
	if result.SubstituteName, err = decodeName(pathBuffer, substituteOffset, substituteLength); err != nil {
		return nil, errors.Wrap(err, "invalid substitute name")
	}
	if result.PrintName, err = decodeName(pathBuffer, printOffset, printLength); err != nil {
		return nil, errors.Wrap(err, "invalid print name")
	}
	if result.SubstituteName == "" {
		return nil, errors.New("empty substitute name")
	}

	// Success.
	return result, nil
}

// SplitVolumeGUID splits a target of the form Volume{GUID}\rest (after prefix
// removal) into the volume name in the form accepted by
// GetVolumePathNamesForVolumeName (\\?\Volume{GUID}\) and the remainder.
func SplitVolumeGUID(target string) (volume, rest string, ok bool) {
	if !strings.HasPrefix(target, "Volume{") {
		return "", "", false
	}
	closing := strings.IndexByte(target, '}')
	if closing < 0 {
		return "", "", false
	}
	volume = `\\?\` + target[:closing+1] + `\`
	rest = strings.TrimLeft(target[closing+1:], `\`)
	return volume, rest, true
}
