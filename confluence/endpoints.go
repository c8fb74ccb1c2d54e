package confluence

import (
	"fmt"
	"net/url"

	"github.com/google/go-querystring/query"
)

// getContentByIDEndpoint returns the (v1) API endpoint to fetch one content item:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content/#api-wiki-rest-api-content-id-get
func (a *API) getContentByIDEndpoint(opts GetContentByIDQuery) (*url.URL, error) {
	if opts.ID == "" {
		return nil, fmt.Errorf("confluence: please provide ID to get content by ID")
	}

	ep, err := a.resolveEndpoint(fmt.Sprintf("/rest/api/content/%s", opts.ID))
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// getChildPagesEndpoint returns the (v1) API endpoint to list a content item's child
// pages:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content-children-and-descendants/#api-wiki-rest-api-content-id-child-type-get
func (a *API) getChildPagesEndpoint(opts ChildContentQuery) (*url.URL, error) {
	if opts.ID == "" {
		return nil, fmt.Errorf("confluence: please provide ID to list child pages")
	}

	ep, err := a.resolveEndpoint(fmt.Sprintf("/rest/api/content/%s/child/page", opts.ID))
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// getChildAttachmentsEndpoint is getChildPagesEndpoint for the attachment child type.
func (a *API) getChildAttachmentsEndpoint(opts ChildContentQuery) (*url.URL, error) {
	if opts.ID == "" {
		return nil, fmt.Errorf("confluence: please provide ID to list child attachments")
	}

	ep, err := a.resolveEndpoint(fmt.Sprintf("/rest/api/content/%s/child/attachment", opts.ID))
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// getSpaceByKeyEndpoint returns the (v1) API endpoint to fetch one space:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-space/#api-wiki-rest-api-space-spacekey-get
func (a *API) getSpaceByKeyEndpoint(opts GetSpaceQuery) (*url.URL, error) {
	if opts.Key == "" {
		return nil, fmt.Errorf("confluence: please provide key to get space")
	}

	ep, err := a.resolveEndpoint(fmt.Sprintf("/rest/api/space/%s", opts.Key))
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// getSpacesEndpoint returns the (v1) API endpoint to list spaces:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-space/#api-wiki-rest-api-space-get
func (a *API) getSpacesEndpoint(opts SpacesQuery) (*url.URL, error) {
	ep, err := a.resolveEndpoint("/rest/api/space")
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// getCurrentUserEndpoint returns the (v1) API endpoint to query the current user:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-users/#api-wiki-rest-api-user-current-get
//
// Handy for checking that credentials actually work before kicking off a long export.
func (a *API) getCurrentUserEndpoint() (*url.URL, error) {
	return a.resolveEndpoint("/rest/api/user/current")
}

// Do a bit of error checking on endpoint format, and return it relative to the base URI.
// Also used for the _links.next continuations and attachment download refs the server
// hands back, which arrive server-relative with their query strings attached.
func (a *API) resolveEndpoint(endpoint string) (*url.URL, error) {
	baseUri := a.BaseURI

	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("confluence: failed to parse endpoint ref: %w", err)
	}

	return baseUri.ResolveReference(ref), nil
}
