package confluence

import (
	"context"
	"fmt"
)

// ListAllSpaces walks the space listing to the end and returns all spaces keyed by
// space key.
func (api *API) ListAllSpaces(ctx context.Context, includePersonal bool) (map[string]Space, error) {
	spaces := map[string]Space{}

	query := SpacesQuery{
		Limit: 25,
	}

	if !includePersonal {
		// Logic here is a bit confusing.  The `type` parameter may be "global", "personal", or
		// nothing at all for both.  "global" will return team spaces, while "personal" returns
		// each user's space.  Leaving it empty gives us everything, so we only set this if we
		// _do not_ intend to include personal spaces in our query.
		query.Type = "global"
	}

	ep, err := api.getSpacesEndpoint(query)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't build spaces endpoint: %w", err)
	}

	for {
		list, err := api.getSpaceList(ctx, ep)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't list spaces: %w", err)
		}

		for _, space := range list.Results {
			spaces[space.Key] = space
		}

		if list.Links.Next == "" {
			break
		}

		// _links.next comes back server-relative with limit/start already encoded, so
		// resolve it against the base URL and request it verbatim.
		ep, err = api.resolveEndpoint(list.Links.Next)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't parse _links.next: %w", err)
		}
	}

	return spaces, nil
}

// ListAllChildPages returns every page-type child of the given content item, across
// however many listing pages the server spreads them.
func (api *API) ListAllChildPages(ctx context.Context, contentID string) ([]Content, error) {
	var pages []Content

	ep, err := api.getChildPagesEndpoint(ChildContentQuery{ID: contentID, Limit: 25})
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't build child pages endpoint: %w", err)
	}

	for {
		list, err := api.getContentList(ctx, ep)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't list child pages: %w", err)
		}

		pages = append(pages, list.Results...)

		if list.Links.Next == "" {
			break
		}

		ep, err = api.resolveEndpoint(list.Links.Next)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't parse _links.next: %w", err)
		}
	}

	return pages, nil
}

// ListAllChildAttachments returns every attachment of the given content item.  Results
// accumulate across listing pages: a page with hundreds of attachments must still end
// up with every single one in its local index.
func (api *API) ListAllChildAttachments(ctx context.Context, contentID string) ([]Attachment, error) {
	var attachments []Attachment

	ep, err := api.getChildAttachmentsEndpoint(ChildContentQuery{ID: contentID, Limit: 25})
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't build child attachments endpoint: %w", err)
	}

	for {
		list, err := api.getAttachmentList(ctx, ep)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't list child attachments: %w", err)
		}

		attachments = append(attachments, list.Results...)

		if list.Links.Next == "" {
			break
		}

		ep, err = api.resolveEndpoint(list.Links.Next)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't parse _links.next: %w", err)
		}
	}

	return attachments, nil
}
