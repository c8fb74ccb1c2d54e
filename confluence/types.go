package confluence

import "encoding/json"

// See https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-users/#api-wiki-rest-api-user-current-get
type User struct {
	Type        string `json:"type"`
	Username    string `json:"username"`
	UserKey     string `json:"userKey"`
	AccountID   string `json:"accountId"`
	AccountType string `json:"accountType"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// See https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-space/#api-wiki-rest-api-space-spacekey-get.
// Space IDs come back as numbers even though content IDs are strings, hence the
// json.Number.  Consistency!
type Space struct {
	ID     json.Number `json:"id,omitempty"`
	Key    string      `json:"key,omitempty"`
	Name   string      `json:"name,omitempty"`
	Type   string      `json:"type,omitempty"`
	Status string      `json:"status,omitempty"`

	// Only populated when the space was requested with expand=homepage.  Spaces can
	// legitimately not have one, in which case the field is simply absent.
	Homepage *Content `json:"homepage,omitempty"`
}

// Content is the v1 content API's page-ish item:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content/#api-wiki-rest-api-content-id-get
//
// The same shape covers pages and blogposts; we only ever ask for pages.
type Content struct {
	ID     string `json:"id,omitempty"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty"` // current, archived, deleted, trashed
	Title  string `json:"title,omitempty"`

	Body Body `json:"body"`

	// Populated by expand=children.page,children.attachment.  Treat these as a first
	// page only; full listings go through the child endpoints, which paginate.
	Children *Children `json:"children,omitempty"`

	Links ContentLinks `json:"_links"`
}

// Body holds whichever rendered representations we asked for.
type Body struct {
	View *Storage `json:"view,omitempty"`
}

// Storage is one rendered representation of a body.
type Storage struct {
	Representation string `json:"representation"`
	Value          string `json:"value"`
}

type Children struct {
	Page       *ContentList    `json:"page,omitempty"`
	Attachment *AttachmentList `json:"attachment,omitempty"`
}

type ContentLinks struct {
	WebUI string `json:"webui,omitempty"`
	Self  string `json:"self,omitempty"`
}

// Attachment is the content API's attachment child.  Download is server-relative and
// keeps its query string, e.g.
//
//	/download/attachments/524291/peak.jpeg?version=1&modificationDate=1459521827579&api=v2
type Attachment struct {
	ID    string `json:"id,omitempty"` // carries an "att" prefix, e.g. att524291
	Title string `json:"title,omitempty"`

	Links struct {
		Download string `json:"download,omitempty"`
	} `json:"_links"`
}
