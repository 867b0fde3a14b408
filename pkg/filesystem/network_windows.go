package filesystem

import (
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	fssyscall "github.com/mutagen-io/fsmeta/pkg/filesystem/internal/syscall"
	"github.com/mutagen-io/fsmeta/pkg/logging"
)

// smbProvider is the network provider name of the Windows SMB client.
const smbProvider = "Microsoft Windows Network"

// resourceBufferSize is the size of the buffer used for network resource
// enumeration, in bytes.
const resourceBufferSize = 16 * 1024

// listShares enumerates the disk shares exported by a server.
func listShares(caps *capabilities, server string) ([]string, error) {
	if !caps.shareEnumeration() {
		return nil, newKindError(ErrorKindUnsupportedOperation, "enumerate shares", server, "share enumeration unavailable")
	}
	server16, err := windows.UTF16PtrFromString(server)
	if err != nil {
		return nil, newKindError(ErrorKindInvalidPath, "enumerate shares", server, "invalid server name")
	}

	var shares []string
	var resume uint32
	for {
		var buffer *byte
		var read, total uint32
		status, _, _ := caps.netShareEnum.Call(
			uintptr(unsafe.Pointer(server16)),
			1,
			uintptr(unsafe.Pointer(&buffer)),
			fssyscall.MAX_PREFERRED_LENGTH,
			uintptr(unsafe.Pointer(&read)),
			uintptr(unsafe.Pointer(&total)),
			uintptr(unsafe.Pointer(&resume)),
		)
		if status != fssyscall.NERR_Success && status != fssyscall.ERROR_MORE_DATA {
			return nil, newError("enumerate shares", server, syscall.Errno(status))
		}
		if buffer != nil {
			for _, share := range unsafe.Slice((*fssyscall.ShareInfo1)(unsafe.Pointer(buffer)), read) {
				if share.Type == fssyscall.STYPE_DISKTREE {
					shares = append(shares, windows.UTF16PtrToString(share.Netname))
				}
			}
			caps.netAPIBufferFree.Call(uintptr(unsafe.Pointer(buffer)))
		}
		if status != fssyscall.ERROR_MORE_DATA {
			return shares, nil
		}
	}
}

// connectStatus probes whether or not a mapped drive is connected. SMB
// connections are probed through the workstation service, which reports
// sessions that have silently dropped. Other providers are considered
// connected if the provider still resolves the local name.
func connectStatus(caps *capabilities, localName string, smb bool) bool {
	local16, err := windows.UTF16PtrFromString(localName)
	if err != nil {
		return false
	}
	if smb && caps.netUseGetInfo != nil {
		var buffer *byte
		status, _, _ := caps.netUseGetInfo.Call(
			0,
			uintptr(unsafe.Pointer(local16)),
			1,
			uintptr(unsafe.Pointer(&buffer)),
		)
		if status != fssyscall.NERR_Success || buffer == nil {
			return false
		}
		defer caps.netAPIBufferFree.Call(uintptr(unsafe.Pointer(buffer)))
		switch (*fssyscall.UseInfo1)(unsafe.Pointer(buffer)).Status {
		case fssyscall.USE_SESSLOST, fssyscall.USE_DISCONN, fssyscall.USE_NETERR:
			return false
		default:
			return true
		}
	}
	if caps.wnetGetConnection == nil {
		return false
	}
	remote := make([]uint16, 256)
	length := uint32(len(remote))
	status, _, _ := caps.wnetGetConnection.Call(
		uintptr(unsafe.Pointer(local16)),
		uintptr(unsafe.Pointer(&remote[0])),
		uintptr(unsafe.Pointer(&length)),
	)
	return status == uintptr(windows.NO_ERROR)
}

// mappedDrives enumerates mapped network drives within the specified
// enumeration scope.
func mappedDrives(caps *capabilities, scope uint32, logger *logging.Logger) ([]*DriveInfo, error) {
	if !caps.resourceEnumeration() {
		return nil, nil
	}

	// Open the enumeration and defer its closure.
	var enumeration windows.Handle
	status, _, _ := caps.wnetOpenEnum.Call(
		uintptr(scope),
		fssyscall.RESOURCETYPE_DISK,
		0,
		0,
		uintptr(unsafe.Pointer(&enumeration)),
	)
	if status != uintptr(windows.NO_ERROR) {
		return nil, newError("enumerate mapped drives", "", syscall.Errno(status))
	}
	defer func() {
		if status, _, _ := caps.wnetCloseEnum.Call(uintptr(enumeration)); status != uintptr(windows.NO_ERROR) {
			logger.Warnf("Unable to close network resource enumeration: %v", syscall.Errno(status))
		}
	}()

	// Allocate the buffer as resource structures to guarantee alignment.
	resourceSize := unsafe.Sizeof(fssyscall.NetResource{})
	buffer := make([]fssyscall.NetResource, resourceBufferSize/resourceSize)

	var drives []*DriveInfo
	for {
		count := ^uint32(0)
		size := uint32(uintptr(len(buffer)) * resourceSize)
		status, _, _ := caps.wnetEnumResource.Call(
			uintptr(enumeration),
			uintptr(unsafe.Pointer(&count)),
			uintptr(unsafe.Pointer(&buffer[0])),
			uintptr(unsafe.Pointer(&size)),
		)
		if status == fssyscall.ERROR_NO_MORE_ITEMS {
			return drives, nil
		} else if status != uintptr(windows.NO_ERROR) {
			return drives, newError("enumerate mapped drives", "", syscall.Errno(status))
		}
		for _, resource := range buffer[:count] {
			if resource.Type != fssyscall.RESOURCETYPE_DISK ||
				resource.DisplayType != fssyscall.RESOURCEDISPLAYTYPE_SHARE ||
				resource.LocalName == nil {
				continue
			}
			local := windows.UTF16PtrToString(resource.LocalName)
			if len(local) < 2 || local[1] != ':' {
				continue
			}
			drive := &DriveInfo{
				Letter: strings.ToUpper(local[:1])[0],
				Mapped: true,
			}
			if resource.RemoteName != nil {
				drive.RemoteName = windows.UTF16PtrToString(resource.RemoteName)
			}
			if resource.Provider != nil {
				drive.Provider = windows.UTF16PtrToString(resource.Provider)
			}
			drive.SMB = drive.Provider == smbProvider
			drive.Connected = connectStatus(caps, local[:2], drive.SMB)
			drives = append(drives, drive)
		}
	}
}

// enumerateMappedDrives collects mapped drives from both the connected and
// remembered scopes, skipping duplicate letters. Failures are logged and
// yield whatever was collected.
func enumerateMappedDrives(caps *capabilities, logger *logging.Logger) []*DriveInfo {
	var result []*DriveInfo
	seen := make(map[byte]bool)
	for _, scope := range []uint32{fssyscall.RESOURCE_CONNECTED, fssyscall.RESOURCE_REMEMBERED} {
		drives, err := mappedDrives(caps, scope, logger)
		if err != nil {
			logger.Debugf("Unable to enumerate mapped drives: %v", err)
		}
		for _, drive := range drives {
			if !seen[drive.Letter] {
				seen[drive.Letter] = true
				result = append(result, drive)
			}
		}
	}
	return result
}
