package syscall

const (
	// FILE_READ_EA is the access right for reading extended attributes.
	FILE_READ_EA = 0x0008
	// FILE_READ_ATTRIBUTES is the access right for reading file attributes.
	FILE_READ_ATTRIBUTES = 0x0080

	// FILE_ATTRIBUTE_DEVICE marks device objects.
	FILE_ATTRIBUTE_DEVICE = 0x00000040

	// STYPE_DISKTREE is the share type of disk shares.
	STYPE_DISKTREE = 0

	// MAX_PREFERRED_LENGTH requests that the system allocate as much memory as
	// needed for network enumeration results.
	MAX_PREFERRED_LENGTH = 0xFFFFFFFF

	// USE_SESSLOST indicates that a network connection's session was lost.
	USE_SESSLOST = 2
	// USE_DISCONN indicates that a network connection is disconnected.
	USE_DISCONN = 3
	// USE_NETERR indicates that a network connection has a network error.
	USE_NETERR = 4

	// RESOURCE_CONNECTED enumerates currently connected resources.
	RESOURCE_CONNECTED = 0x00000001
	// RESOURCE_REMEMBERED enumerates persistent connections.
	RESOURCE_REMEMBERED = 0x00000003
	// RESOURCETYPE_DISK selects disk resources.
	RESOURCETYPE_DISK = 0x00000001
	// RESOURCEDISPLAYTYPE_SHARE marks share resources.
	RESOURCEDISPLAYTYPE_SHARE = 0x00000003

	// NERR_Success is the success value of network management functions.
	NERR_Success = 0
	// ERROR_NO_MORE_ITEMS terminates network resource enumeration.
	ERROR_NO_MORE_ITEMS = 259
	// ERROR_MORE_DATA indicates that further enumeration calls are required.
	ERROR_MORE_DATA = 234

	// TRUSTEE_IS_SID indicates that a trustee is identified by a SID.
	TRUSTEE_IS_SID = 0
	// TRUSTEE_IS_UNKNOWN is the unknown trustee type.
	TRUSTEE_IS_UNKNOWN = 0
	// NO_MULTIPLE_TRUSTEE is the default multiple trustee operation.
	NO_MULTIPLE_TRUSTEE = 0
)

// ShareInfo1 is the Go representation of SHARE_INFO_1.
type ShareInfo1 struct {
	Netname *uint16
	Type    uint32
	Remark  *uint16
}

// UseInfo1 is the Go representation of USE_INFO_1.
type UseInfo1 struct {
	Local    *uint16
	Remote   *uint16
	Password *uint16
	Status   uint32
	AsgType  uint32
	Refcount uint32
	Usecount uint32
}

// NetResource is the Go representation of NETRESOURCEW.
type NetResource struct {
	Scope       uint32
	Type        uint32
	DisplayType uint32
	Usage       uint32
	LocalName   *uint16
	RemoteName  *uint16
	Comment     *uint16
	Provider    *uint16
}
