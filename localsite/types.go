package localsite

// PageExport is one exported page in a space's tree.  ChildPages keeps the
// server's listing order, which is also the order the index presents them in.
type PageExport struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	FileName string `yaml:"file"`

	ChildPages  []PageExport       `yaml:"pages,omitempty"`
	Attachments []AttachmentExport `yaml:"attachments,omitempty"`
}

// AttachmentExport is one downloaded attachment payload, named per
// DeriveDownloadedFileName and living in the space's download folder.
type AttachmentExport struct {
	FileID   string `yaml:"id"`
	FileName string `yaml:"file"`
}

// SpaceExport ties a space to its on-disk folder and exported page tree.
type SpaceExport struct {
	Key    string `yaml:"space"`
	Name   string `yaml:"name,omitempty"`
	Folder string `yaml:"folder"`

	// Root is nil when the space's homepage couldn't be exported at all; such a
	// space gets a folder but no index.
	Root *PageExport `yaml:"root,omitempty"`
}
