package confluence

// GetContentByIDQuery defines the query parameters for:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content/#api-wiki-rest-api-content-id-get
type GetContentByIDQuery struct {
	ID string `url:"-"` // ID of the content item; required

	// Properties to expand inline, comma-joined on the wire.  We ask for
	// children.page, children.attachment and body.view.value so a single round trip
	// hands us the rendered body plus the first page of both child listings.
	Expand []string `url:"expand,omitempty,comma"`
}

// ChildContentQuery defines the query parameters for the child listings:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content-children-and-descendants/#api-wiki-rest-api-content-id-child-type-get
//
// The same shape serves /child/page and /child/attachment.
type ChildContentQuery struct {
	ID string `url:"-"` // ID of the parent content item; required

	Expand []string `url:"expand,omitempty,comma"`
	Start  int      `url:"start,omitempty"`
	Limit  int      `url:"limit,omitempty"` // page limit; default 25

	// Pagination is driven by the response's _links.next relative URL, not by a
	// cursor parameter: follow next verbatim until it comes back empty.
}

// GetSpaceQuery defines the query parameters for:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-space/#api-wiki-rest-api-space-spacekey-get
type GetSpaceQuery struct {
	Key string `url:"-"` // key of the space; required

	Expand []string `url:"expand,omitempty,comma"` // we want "homepage"
}

// SpacesQuery defines the query parameters for:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-space/#api-wiki-rest-api-space-get
type SpacesQuery struct {
	// Filter the results to spaces based on...
	Keys   []string `url:"spaceKey,omitempty,comma"` // their keys.
	Type   string   `url:"type,omitempty"`           // their types. Valid values: "global" or "personal"
	Status string   `url:"status,omitempty"`         // their status: current, archived.

	Start int `url:"start,omitempty"`
	Limit int `url:"limit,omitempty"` // page limit; default 25
}
