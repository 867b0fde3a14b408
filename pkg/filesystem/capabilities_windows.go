package filesystem

import (
	"sync"

	"golang.org/x/sys/windows"

	"github.com/mutagen-io/fsmeta/pkg/logging"
)

// capabilities is the table of optional operating system facilities. It is
// computed exactly once per process and is read-only afterward.
type capabilities struct {
	// fileIDInfo indicates that FILE_ID_INFO identities (Windows 8 and later)
	// are used. Otherwise identities use the legacy volume serial and file
	// index triple. The choice never changes within a process.
	fileIDInfo bool
	// getEffectiveRightsFromACL is GetEffectiveRightsFromAclW.
	getEffectiveRightsFromACL *windows.LazyProc
	// getVolumePathNamesForVolumeName is GetVolumePathNamesForVolumeNameW.
	getVolumePathNamesForVolumeName *windows.LazyProc
	// netShareEnum is NetShareEnum.
	netShareEnum *windows.LazyProc
	// netAPIBufferFree is NetApiBufferFree.
	netAPIBufferFree *windows.LazyProc
	// netUseGetInfo is NetUseGetInfo.
	netUseGetInfo *windows.LazyProc
	// wnetOpenEnum is WNetOpenEnumW.
	wnetOpenEnum *windows.LazyProc
	// wnetEnumResource is WNetEnumResourceW.
	wnetEnumResource *windows.LazyProc
	// wnetCloseEnum is WNetCloseEnum.
	wnetCloseEnum *windows.LazyProc
	// wnetGetConnection is WNetGetConnectionW.
	wnetGetConnection *windows.LazyProc
	// currentUserSID is the SID of the account running the process.
	currentUserSID *windows.SID
	// worldSID is the well-known Everyone SID (S-1-1-0).
	worldSID *windows.SID
}

// shareEnumeration reports whether or not network share enumeration is
// available.
func (c *capabilities) shareEnumeration() bool {
	return c.netShareEnum != nil && c.netAPIBufferFree != nil && c.netUseGetInfo != nil
}

// resourceEnumeration reports whether or not network resource enumeration is
// available.
func (c *capabilities) resourceEnumeration() bool {
	return c.wnetOpenEnum != nil && c.wnetEnumResource != nil && c.wnetCloseEnum != nil
}

// aclLookup reports whether or not effective rights computation is available.
func (c *capabilities) aclLookup() bool {
	return c.getEffectiveRightsFromACL != nil && c.currentUserSID != nil && c.worldSID != nil
}

// capabilityTable holds the lazily computed capabilities.
var capabilityTable struct {
	once  sync.Once
	value *capabilities
}

// optionalProc resolves a procedure, returning nil if it is unavailable.
func optionalProc(library *windows.LazyDLL, name string) *windows.LazyProc {
	proc := library.NewProc(name)
	if proc.Find() != nil {
		return nil
	}
	return proc
}

// loadCapabilities returns the capability table, computing it on first use.
// Concurrent first calls compute the table exactly once.
func loadCapabilities(logger *logging.Logger) *capabilities {
	capabilityTable.once.Do(func() {
		capabilityTable.value = probeCapabilities(logger)
	})
	return capabilityTable.value
}

// probeCapabilities computes the capability table.
func probeCapabilities(logger *logging.Logger) *capabilities {
	advapi32 := windows.NewLazySystemDLL("advapi32.dll")
	kernel32 := windows.NewLazySystemDLL("kernel32.dll")
	netapi32 := windows.NewLazySystemDLL("netapi32.dll")
	mpr := windows.NewLazySystemDLL("mpr.dll")

	result := &capabilities{
		getEffectiveRightsFromACL:       optionalProc(advapi32, "GetEffectiveRightsFromAclW"),
		getVolumePathNamesForVolumeName: optionalProc(kernel32, "GetVolumePathNamesForVolumeNameW"),
		netShareEnum:                    optionalProc(netapi32, "NetShareEnum"),
		netAPIBufferFree:                optionalProc(netapi32, "NetApiBufferFree"),
		netUseGetInfo:                   optionalProc(netapi32, "NetUseGetInfo"),
		wnetOpenEnum:                    optionalProc(mpr, "WNetOpenEnumW"),
		wnetEnumResource:                optionalProc(mpr, "WNetEnumResourceW"),
		wnetCloseEnum:                   optionalProc(mpr, "WNetCloseEnum"),
		wnetGetConnection:               optionalProc(mpr, "WNetGetConnectionW"),
	}

	// FILE_ID_INFO is available from Windows 8 (6.2).
	version := windows.RtlGetVersion()
	result.fileIDInfo = version.MajorVersion > 6 ||
		(version.MajorVersion == 6 && version.MinorVersion >= 2)

	// Resolve the trustees used for effective rights computation.
	if user, err := windows.GetCurrentProcessToken().GetTokenUser(); err != nil {
		logger.Debugf("Unable to query process token user: %v", err)
	} else if result.currentUserSID, err = user.User.Sid.Copy(); err != nil {
		logger.Debugf("Unable to copy process user SID: %v", err)
	}
	if world, err := windows.CreateWellKnownSid(windows.WinWorldSid); err != nil {
		logger.Debugf("Unable to create world SID: %v", err)
	} else {
		result.worldSID = world
	}

	logger.Debugf("Capabilities: file ID info %t, ACL lookup %t, share enumeration %t, resource enumeration %t",
		result.fileIDInfo, result.aclLookup(), result.shareEnumeration(), result.resourceEnumeration(),
	)
	return result
}
