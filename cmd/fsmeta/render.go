package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/mutagen-io/fsmeta/cmd"

	"github.com/mutagen-io/fsmeta/pkg/configuration"
	"github.com/mutagen-io/fsmeta/pkg/encoding"
	"github.com/mutagen-io/fsmeta/pkg/filesystem"
)

// record is the serializable form of a metadata query result. Fields that
// weren't populated are omitted.
type record struct {
	// Path is the queried path.
	Path string `yaml:"path"`
	// Exists indicates whether or not the path resolves to an object.
	Exists bool `yaml:"exists"`
	// Type is the object type.
	Type string `yaml:"type,omitempty"`
	// Link is the link kind of the path itself.
	Link string `yaml:"link,omitempty"`
	// Size is the object size in bytes.
	Size *uint64 `yaml:"size,omitempty"`
	// Created is the creation time.
	Created *time.Time `yaml:"created,omitempty"`
	// Modified is the modification time.
	Modified *time.Time `yaml:"modified,omitempty"`
	// Accessed is the access time.
	Accessed *time.Time `yaml:"accessed,omitempty"`
	// Attributes are the attribute names.
	Attributes []string `yaml:"attributes,omitempty"`
	// Permissions is the permission string.
	Permissions string `yaml:"permissions,omitempty"`
	// Owner is the owner identifier.
	Owner string `yaml:"owner,omitempty"`
	// Group is the group identifier.
	Group string `yaml:"group,omitempty"`
	// Identity is the base62-encoded object identity.
	Identity string `yaml:"identity,omitempty"`
	// Drive is the drive information for drive roots.
	Drive *driveRecord `yaml:"drive,omitempty"`
}

// driveRecord is the serializable form of drive information.
type driveRecord struct {
	// Letter is the drive letter.
	Letter string `yaml:"letter,omitempty"`
	// Remote is the remote name of a mapped drive.
	Remote string `yaml:"remote,omitempty"`
	// Provider is the network provider of a mapped drive.
	Provider string `yaml:"provider,omitempty"`
	// Connected indicates whether or not the drive is connected.
	Connected bool `yaml:"connected"`
}

// nonZeroTime returns a pointer to t, or nil if t is zero.
func nonZeroTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// newRecord converts metadata to its serializable form.
func newRecord(entry filesystem.Entry, metadata *filesystem.Metadata) *record {
	result := &record{Path: entry.Path()}
	if metadata.Has(filesystem.FieldExists) {
		result.Exists = metadata.Exists()
	}
	if metadata.Has(filesystem.FieldType) && metadata.Type() != filesystem.FileTypeUnknown {
		result.Type = metadata.Type().String()
	}
	if metadata.Has(filesystem.FieldLinkType) && metadata.LinkKind() != filesystem.LinkKindNone {
		result.Link = metadata.LinkKind().String()
	}
	if !result.Exists {
		return result
	}
	if metadata.Has(filesystem.FieldSize) {
		size := metadata.Size()
		result.Size = &size
	}
	if metadata.Has(filesystem.FieldCreationTime) {
		result.Created = nonZeroTime(metadata.CreationTime())
	}
	if metadata.Has(filesystem.FieldModificationTime) {
		result.Modified = nonZeroTime(metadata.ModificationTime())
	}
	if metadata.Has(filesystem.FieldAccessTime) {
		result.Accessed = nonZeroTime(metadata.AccessTime())
	}
	if metadata.Has(filesystem.FieldAttributes) {
		result.Attributes = metadata.Attributes().Names()
	}
	if metadata.Known()&filesystem.FieldPermissions != 0 {
		result.Permissions = metadata.Permissions().String()
	}
	if metadata.Has(filesystem.FieldOwnership) {
		result.Owner = metadata.OwnerID()
		result.Group = metadata.GroupID()
	}
	if metadata.Has(filesystem.FieldIdentity) {
		result.Identity = encoding.EncodeBase62(metadata.Identity())
	}
	if drive, ok := metadata.Drive(); ok {
		result.Drive = &driveRecord{
			Remote:    drive.RemoteName,
			Provider:  drive.Provider,
			Connected: drive.Connected,
		}
		if drive.Letter != 0 {
			result.Drive.Letter = string(drive.Letter)
		}
	}
	return result
}

// colorizedName renders a path name colored by its type.
func colorizedName(name string, r *record) string {
	switch {
	case r.Link != "" && !r.Exists:
		return color.RedString(name)
	case r.Link != "":
		return color.CyanString(name)
	case r.Type == "directory":
		return color.BlueString(name)
	case !r.Exists:
		return color.RedString(name)
	default:
		return name
	}
}

// printRecordText prints a record in long text form.
func printRecordText(r *record) {
	fmt.Fprintln(color.Output, "Path:", colorizedName(r.Path, r))
	if !r.Exists {
		fmt.Println("Exists: no")
		if r.Link != "" {
			fmt.Println("Link:", r.Link, "(dangling)")
		}
		return
	}
	if r.Type != "" {
		fmt.Println("Type:", r.Type)
	}
	if r.Link != "" {
		fmt.Println("Link:", r.Link)
	}
	if r.Size != nil {
		fmt.Printf("Size: %s (%d bytes)\n", humanize.Bytes(*r.Size), *r.Size)
	}
	for _, t := range []struct {
		label string
		value *time.Time
	}{
		{"Created", r.Created},
		{"Modified", r.Modified},
		{"Accessed", r.Accessed},
	} {
		if t.value != nil {
			fmt.Printf("%s: %s (%s)\n", t.label, t.value.Format(time.RFC3339), humanize.Time(*t.value))
		}
	}
	if len(r.Attributes) > 0 {
		fmt.Println("Attributes:", strings.Join(r.Attributes, ", "))
	}
	if r.Permissions != "" {
		fmt.Println("Permissions:", r.Permissions)
	}
	if r.Owner != "" || r.Group != "" {
		fmt.Printf("Owner: %s\nGroup: %s\n", r.Owner, r.Group)
	}
	if r.Identity != "" {
		fmt.Println("Identity:", r.Identity)
	}
	if r.Drive != nil && r.Drive.Remote != "" {
		fmt.Println("Remote:", r.Drive.Remote, "via", r.Drive.Provider)
		if !r.Drive.Connected {
			color.Yellow("Disconnected\n")
		}
	}
}

// printRecords prints records in the configured output format. Text output
// separates records with delimiter lines.
func printRecords(records []*record) error {
	if session.configuration.Output == configuration.OutputFormatYAML {
		return encoding.EncodeYAML(os.Stdout, records)
	}
	for _, r := range records {
		fmt.Println(cmd.DelimiterLine)
		printRecordText(r)
	}
	if len(records) > 0 {
		fmt.Println(cmd.DelimiterLine)
	}
	return nil
}

// printValues prints path and value pairs, either as a YAML mapping or as
// text lines.
func printValues(keys []string, values map[string]string) error {
	if session.configuration.Output == configuration.OutputFormatYAML {
		return encoding.EncodeYAML(os.Stdout, values)
	}
	for _, key := range keys {
		if len(keys) == 1 {
			fmt.Println(values[key])
		} else {
			fmt.Printf("%s: %s\n", key, values[key])
		}
	}
	return nil
}
