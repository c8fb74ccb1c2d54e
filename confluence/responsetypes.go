package confluence

// CollectionLinks is the pagination block every v1 listing carries.
type CollectionLinks struct {
	// Contains the server-relative URL for the next set of results, query string
	// included. This property will not be present if there is no additional data
	// available.
	Next string `json:"next"`
}

// SpaceList response type
type SpaceList struct {
	Results []Space `json:"results"`

	Size  int             `json:"size"`
	Links CollectionLinks `json:"_links"`
}

// ContentList response type, as returned by /child/page and the children.page expand.
type ContentList struct {
	Results []Content `json:"results"`

	Size  int             `json:"size"`
	Links CollectionLinks `json:"_links"`
}

// AttachmentList response type, as returned by /child/attachment and the
// children.attachment expand.
type AttachmentList struct {
	Results []Attachment `json:"results"`

	Size  int             `json:"size"`
	Links CollectionLinks `json:"_links"`
}
