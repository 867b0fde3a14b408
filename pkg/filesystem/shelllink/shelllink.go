// Package shelllink reads and writes Windows shell link (.lnk) files in the
// Shell Link Binary File Format (MS-SHLLINK). Only the structures needed to
// recover or record a link target are interpreted; the target ID list and
// extra data blocks are skipped when reading and omitted when writing.
package shelllink

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const (
	// headerSize is the fixed size of ShellLinkHeader.
	headerSize = 0x4C

	flagHasLinkTargetIDList = 0x00000001
	flagHasLinkInfo         = 0x00000002
	flagHasName             = 0x00000004
	flagHasRelativePath     = 0x00000008
	flagHasWorkingDir       = 0x00000010
	flagHasArguments        = 0x00000020
	flagHasIconLocation     = 0x00000040
	flagIsUnicode           = 0x00000080

	linkInfoVolumeIDAndLocalBasePath               = 0x1
	linkInfoCommonNetworkRelativeLinkAndPathSuffix = 0x2

	// linkInfoMinimumHeaderSize is the LinkInfo header size without Unicode
	// offsets.
	linkInfoMinimumHeaderSize = 0x1C
	// linkInfoUnicodeHeaderSize is the LinkInfo header size with Unicode
	// offsets.
	linkInfoUnicodeHeaderSize = 0x24
	// networkLinkMinimumSize is the fixed size of CommonNetworkRelativeLink
	// without Unicode offsets.
	networkLinkMinimumSize = 0x14
	// networkLinkUnicodeSize is the fixed size of CommonNetworkRelativeLink
	// with Unicode offsets.
	networkLinkUnicodeSize = 0x1C

	// driveTypeFixed is DRIVE_FIXED.
	driveTypeFixed = 3
	// showNormal is SW_SHOWNORMAL.
	showNormal = 1
	// fileAttributeNormal is FILE_ATTRIBUTE_NORMAL.
	fileAttributeNormal = 0x80
)

// linkCLSID is the shell link class identifier in its on-disk byte order.
var linkCLSID = []byte{
	0x01, 0x14, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46,
}

var (
	// ErrTruncated indicates that the data ends before a structure it
	// declares.
	ErrTruncated = errors.New("truncated shell link")
	// ErrInvalidHeader indicates that the data is not a shell link.
	ErrInvalidHeader = errors.New("invalid shell link header")
)

// Link is the decoded content of a shell link.
type Link struct {
	// Attributes are the target's file attributes at link creation.
	Attributes uint32
	// FileSize is the low 32 bits of the target's size at link creation.
	FileSize uint32
	// LocalBasePath is the local path prefix of the target.
	LocalBasePath string
	// NetworkPath is the UNC share (\\server\share) containing the target.
	NetworkPath string
	// DeviceName is the drive letter a network share was mapped to, if any.
	DeviceName string
	// CommonPathSuffix is appended to LocalBasePath or NetworkPath.
	CommonPathSuffix string
	// Name is the link description.
	Name string
	// RelativePath is the target relative to the link's location.
	RelativePath string
	// WorkingDirectory is the working directory for the target.
	WorkingDirectory string
	// Arguments are the command line arguments for the target.
	Arguments string
	// IconLocation is the icon location.
	IconLocation string
}

// New creates a link to the specified absolute target, which may be a drive
// path or a UNC path.
func New(target string) *Link {
	link := &Link{Attributes: fileAttributeNormal}
	if strings.HasPrefix(target, `\\`) {
		body := target[2:]
		share := len(body)
		if first := strings.IndexByte(body, '\\'); first >= 0 {
			if second := strings.IndexByte(body[first+1:], '\\'); second >= 0 {
				share = first + 1 + second
			}
		}
		link.NetworkPath = `\\` + body[:share]
		if share < len(body) {
			link.CommonPathSuffix = body[share+1:]
		}
	} else {
		link.LocalBasePath = target
	}
	return link
}

// Target returns the link target. Network targets take priority over local
// ones, and the relative path is used only when the link carries no location
// information.
func (l *Link) Target() string {
	switch {
	case l.NetworkPath != "":
		return joinSuffix(l.NetworkPath, l.CommonPathSuffix)
	case l.LocalBasePath != "":
		return joinSuffix(l.LocalBasePath, l.CommonPathSuffix)
	}
	return l.RelativePath
}

// joinSuffix appends a common path suffix to a base path.
func joinSuffix(base, suffix string) string {
	if suffix == "" {
		return base
	} else if strings.HasSuffix(base, `\`) {
		return base + suffix
	}
	return base + `\` + suffix
}

var (
	// ansi is the code page used for non-Unicode strings.
	ansi = charmap.Windows1252
	// wide is the encoding used for Unicode strings.
	wide = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
)

// uint16At reads a little-endian uint16 with bounds checking.
func uint16At(data []byte, offset int) (uint16, error) {
	if offset < 0 || offset+2 > len(data) {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint16(data[offset:]), nil
}

// uint32At reads a little-endian uint32 with bounds checking.
func uint32At(data []byte, offset int) (uint32, error) {
	if offset < 0 || offset+4 > len(data) {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint32(data[offset:]), nil
}

// ansiStringAt reads a NUL-terminated code page string.
func ansiStringAt(data []byte, offset uint32) (string, error) {
	if uint64(offset) >= uint64(len(data)) {
		return "", ErrTruncated
	}
	terminator := bytes.IndexByte(data[offset:], 0)
	if terminator < 0 {
		return "", ErrTruncated
	}
	decoded, err := ansi.NewDecoder().Bytes(data[offset : int(offset)+terminator])
	if err != nil {
		return "", errors.Wrap(err, "unable to decode string")
	}
	return string(decoded), nil
}

// wideStringAt reads a NUL-terminated UTF-16 string.
func wideStringAt(data []byte, offset uint32) (string, error) {
	if uint64(offset) >= uint64(len(data)) {
		return "", ErrTruncated
	}
	end := int(offset)
	for {
		unit, err := uint16At(data, end)
		if err != nil {
			return "", err
		} else if unit == 0 {
			break
		}
		end += 2
	}
	decoded, err := wide.NewDecoder().Bytes(data[offset:end])
	if err != nil {
		return "", errors.Wrap(err, "unable to decode string")
	}
	return string(decoded), nil
}

// countedStringAt reads a StringData entry: a character count followed by
// the characters. It returns the string and the number of bytes consumed.
func countedStringAt(data []byte, offset int, isUnicode bool) (string, int, error) {
	count, err := uint16At(data, offset)
	if err != nil {
		return "", 0, err
	}
	length := int(count)
	if isUnicode {
		length *= 2
	}
	start := offset + 2
	if start+length > len(data) {
		return "", 0, ErrTruncated
	}
	decoder := ansi.NewDecoder()
	if isUnicode {
		decoder = wide.NewDecoder()
	}
	decoded, err := decoder.Bytes(data[start : start+length])
	if err != nil {
		return "", 0, errors.Wrap(err, "unable to decode string")
	}
	return string(decoded), 2 + length, nil
}

// parseNetworkLink decodes a CommonNetworkRelativeLink structure.
func (l *Link) parseNetworkLink(data []byte) error {
	size, err := uint32At(data, 0)
	if err != nil {
		return err
	} else if size < networkLinkMinimumSize || int(size) > len(data) {
		return ErrTruncated
	}
	data = data[:size]
	netNameOffset, _ := uint32At(data, 8)
	deviceNameOffset, _ := uint32At(data, 12)
	if netNameOffset > networkLinkMinimumSize {
		netNameOffsetUnicode, err := uint32At(data, 20)
		if err != nil {
			return err
		}
		deviceNameOffsetUnicode, err := uint32At(data, 24)
		if err != nil {
			return err
		}
		if l.NetworkPath, err = wideStringAt(data, netNameOffsetUnicode); err != nil {
			return errors.Wrap(err, "invalid network name")
		}
		if deviceNameOffsetUnicode != 0 {
			if l.DeviceName, err = wideStringAt(data, deviceNameOffsetUnicode); err != nil {
				return errors.Wrap(err, "invalid device name")
			}
		}
		return nil
	}
	if l.NetworkPath, err = ansiStringAt(data, netNameOffset); err != nil {
		return errors.Wrap(err, "invalid network name")
	}
	if deviceNameOffset != 0 {
		if l.DeviceName, err = ansiStringAt(data, deviceNameOffset); err != nil {
			return errors.Wrap(err, "invalid device name")
		}
	}
	return nil
}

// parseLinkInfo decodes a LinkInfo structure.
func (l *Link) parseLinkInfo(data []byte) error {
	if len(data) < linkInfoMinimumHeaderSize {
		return ErrTruncated
	}
	headerLength, _ := uint32At(data, 4)
	flags, _ := uint32At(data, 8)
	localBasePathOffset, _ := uint32At(data, 16)
	networkLinkOffset, _ := uint32At(data, 20)
	suffixOffset, _ := uint32At(data, 24)
	var localBasePathOffsetUnicode, suffixOffsetUnicode uint32
	if headerLength >= linkInfoUnicodeHeaderSize {
		var err error
		if localBasePathOffsetUnicode, err = uint32At(data, 28); err != nil {
			return err
		}
		if suffixOffsetUnicode, err = uint32At(data, 32); err != nil {
			return err
		}
	}

	var err error
	if flags&linkInfoVolumeIDAndLocalBasePath != 0 {
		if localBasePathOffsetUnicode != 0 {
			l.LocalBasePath, err = wideStringAt(data, localBasePathOffsetUnicode)
		} else {
			l.LocalBasePath, err = ansiStringAt(data, localBasePathOffset)
		}
		if err != nil {
			return errors.Wrap(err, "invalid local base path")
		}
	}
	if flags&linkInfoCommonNetworkRelativeLinkAndPathSuffix != 0 {
		if uint64(networkLinkOffset) >= uint64(len(data)) {
			return ErrTruncated
		}
		if err := l.parseNetworkLink(data[networkLinkOffset:]); err != nil {
			return errors.Wrap(err, "invalid network link")
		}
	}
	if suffixOffsetUnicode != 0 {
		l.CommonPathSuffix, err = wideStringAt(data, suffixOffsetUnicode)
	} else if suffixOffset != 0 {
		l.CommonPathSuffix, err = ansiStringAt(data, suffixOffset)
	}
	if err != nil {
		return errors.Wrap(err, "invalid common path suffix")
	}
	return nil
}

// Parse decodes a shell link.
func Parse(data []byte) (*Link, error) {
	// Validate the header.
	if len(data) < headerSize {
		return nil, ErrTruncated
	}
	if size, _ := uint32At(data, 0); size != headerSize || !bytes.Equal(data[4:20], linkCLSID) {
		return nil, ErrInvalidHeader
	}
	flags, _ := uint32At(data, 20)
	link := &Link{}
	link.Attributes, _ = uint32At(data, 24)
	link.FileSize, _ = uint32At(data, 52)
	offset := headerSize

	// Skip the target ID list.
	if flags&flagHasLinkTargetIDList != 0 {
		size, err := uint16At(data, offset)
		if err != nil {
			return nil, err
		}
		offset += 2 + int(size)
		if offset > len(data) {
			return nil, ErrTruncated
		}
	}

	// Decode location information.
	if flags&flagHasLinkInfo != 0 {
		size, err := uint32At(data, offset)
		if err != nil {
			return nil, err
		} else if size < linkInfoMinimumHeaderSize || offset+int(size) > len(data) {
			return nil, ErrTruncated
		}
		if err := link.parseLinkInfo(data[offset : offset+int(size)]); err != nil {
			return nil, err
		}
		offset += int(size)
	}

	// Decode string data, which appears in a fixed order.
	isUnicode := flags&flagIsUnicode != 0
	for _, field := range []struct {
		flag   uint32
		target *string
	}{
		{flagHasName, &link.Name},
		{flagHasRelativePath, &link.RelativePath},
		{flagHasWorkingDir, &link.WorkingDirectory},
		{flagHasArguments, &link.Arguments},
		{flagHasIconLocation, &link.IconLocation},
	} {
		if flags&field.flag == 0 {
			continue
		}
		value, consumed, err := countedStringAt(data, offset, isUnicode)
		if err != nil {
			return nil, errors.Wrap(err, "invalid string data")
		}
		*field.target = value
		offset += consumed
	}

	// Success.
	return link, nil
}

// encodeANSI encodes a string in the link code page, terminated by NUL.
// Characters outside the code page are replaced.
func encodeANSI(value string) []byte {
	encoded, err := encoding.ReplaceUnsupported(ansi.NewEncoder()).Bytes([]byte(value))
	if err != nil {
		encoded = []byte(value)
	}
	return append(encoded, 0)
}

// encodeWide encodes a string in UTF-16, terminated by NUL.
func encodeWide(value string) []byte {
	encoded, err := wide.NewEncoder().Bytes([]byte(value))
	if err != nil {
		encoded = nil
	}
	return append(encoded, 0, 0)
}

// MarshalBinary encodes the link. The encoding contains a header, a LinkInfo
// structure with both code page and Unicode strings, and Unicode string data
// for any non-empty descriptive fields.
func (l *Link) MarshalBinary() ([]byte, error) {
	if l.LocalBasePath == "" && l.NetworkPath == "" {
		return nil, errors.New("link has no target location")
	}

	// Build the LinkInfo body and compute offsets relative to its start.
	var body bytes.Buffer
	offset := func() uint32 { return linkInfoUnicodeHeaderSize + uint32(body.Len()) }
	var flags, volumeIDOffset, localOffset, networkOffset, localOffsetUnicode uint32
	if l.NetworkPath != "" {
		flags |= linkInfoCommonNetworkRelativeLinkAndPathSuffix
		networkOffset = offset()
		name := encodeANSI(l.NetworkPath)
		wideName := encodeWide(l.NetworkPath)
		network := make([]byte, networkLinkUnicodeSize)
		binary.LittleEndian.PutUint32(network[0:], uint32(networkLinkUnicodeSize+len(name)+len(wideName)))
		binary.LittleEndian.PutUint32(network[8:], networkLinkUnicodeSize)
		binary.LittleEndian.PutUint32(network[20:], uint32(networkLinkUnicodeSize+len(name)))
		body.Write(network)
		body.Write(name)
		body.Write(wideName)
	} else {
		flags |= linkInfoVolumeIDAndLocalBasePath
		volumeIDOffset = offset()
		volumeID := make([]byte, 0x11)
		binary.LittleEndian.PutUint32(volumeID[0:], 0x11)
		binary.LittleEndian.PutUint32(volumeID[4:], driveTypeFixed)
		binary.LittleEndian.PutUint32(volumeID[12:], 0x10)
		body.Write(volumeID)
		localOffset = offset()
		body.Write(encodeANSI(l.LocalBasePath))
	}
	suffixOffset := offset()
	body.Write(encodeANSI(l.CommonPathSuffix))
	if l.LocalBasePath != "" && l.NetworkPath == "" {
		localOffsetUnicode = offset()
		body.Write(encodeWide(l.LocalBasePath))
	}
	suffixOffsetUnicode := offset()
	body.Write(encodeWide(l.CommonPathSuffix))

	info := make([]byte, linkInfoUnicodeHeaderSize)
	binary.LittleEndian.PutUint32(info[0:], offset())
	binary.LittleEndian.PutUint32(info[4:], linkInfoUnicodeHeaderSize)
	binary.LittleEndian.PutUint32(info[8:], flags)
	binary.LittleEndian.PutUint32(info[12:], volumeIDOffset)
	binary.LittleEndian.PutUint32(info[16:], localOffset)
	binary.LittleEndian.PutUint32(info[20:], networkOffset)
	binary.LittleEndian.PutUint32(info[24:], suffixOffset)
	binary.LittleEndian.PutUint32(info[28:], localOffsetUnicode)
	binary.LittleEndian.PutUint32(info[32:], suffixOffsetUnicode)

	// Build the string data.
	linkFlags := uint32(flagHasLinkInfo | flagIsUnicode)
	var stringData bytes.Buffer
	for _, field := range []struct {
		flag  uint32
		value string
	}{
		{flagHasName, l.Name},
		{flagHasRelativePath, l.RelativePath},
		{flagHasWorkingDir, l.WorkingDirectory},
		{flagHasArguments, l.Arguments},
		{flagHasIconLocation, l.IconLocation},
	} {
		if field.value == "" {
			continue
		}
		linkFlags |= field.flag
		encoded := encodeWide(field.value)
		encoded = encoded[:len(encoded)-2]
		var count [2]byte
		binary.LittleEndian.PutUint16(count[:], uint16(len(encoded)/2))
		stringData.Write(count[:])
		stringData.Write(encoded)
	}

	// Build the header and assemble the link.
	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[0:], headerSize)
	copy(header[4:20], linkCLSID)
	binary.LittleEndian.PutUint32(header[20:], linkFlags)
	binary.LittleEndian.PutUint32(header[24:], l.Attributes)
	binary.LittleEndian.PutUint32(header[52:], l.FileSize)
	binary.LittleEndian.PutUint32(header[60:], showNormal)
	result := make([]byte, 0, len(header)+len(info)+body.Len()+stringData.Len())
	result = append(result, header...)
	result = append(result, info...)
	result = append(result, body.Bytes()...)
	result = append(result, stringData.Bytes()...)
	return result, nil
}
