package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// APIError describes a non-2xx response.  Callers that want to keep going on a
// best-effort export can errors.As for it and log the status instead of bailing.
type APIError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("confluence: error %s on requesting %s", e.Status, e.URL)
}

func (api *API) GetContentByID(ctx context.Context, opts GetContentByIDQuery) (*Content, error) {
	ep, err := api.getContentByIDEndpoint(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get content endpoint: %w", err)
	}

	body, err := api.request(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform request: %w", err)
	}

	var content Content

	if err := json.Unmarshal(body, &content); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &content, nil
}

func (api *API) GetSpace(ctx context.Context, opts GetSpaceQuery) (*Space, error) {
	ep, err := api.getSpaceByKeyEndpoint(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get space endpoint: %w", err)
	}

	body, err := api.request(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform request: %w", err)
	}

	var space Space

	if err := json.Unmarshal(body, &space); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &space, nil
}

// getContentList fetches one page of a child-page listing.  The endpoint is either a
// freshly built one or a resolved _links.next continuation; retrieval.go owns the loop.
func (api *API) getContentList(ctx context.Context, ep *url.URL) (*ContentList, error) {
	body, err := api.request(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform request: %w", err)
	}

	var list ContentList

	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &list, nil
}

// getAttachmentList is getContentList for attachment children.
func (api *API) getAttachmentList(ctx context.Context, ep *url.URL) (*AttachmentList, error) {
	body, err := api.request(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform request: %w", err)
	}

	var list AttachmentList

	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &list, nil
}

func (api *API) getSpaceList(ctx context.Context, ep *url.URL) (*SpaceList, error) {
	body, err := api.request(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform request: %w", err)
	}

	var list SpaceList

	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &list, nil
}

// CurrentUser return current user information
func (api *API) CurrentUser(ctx context.Context) (*User, error) {
	ep, err := api.getCurrentUserEndpoint()
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get current user endpoint: %w", err)
	}

	body, err := api.request(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform http request: %w", err)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &user, nil
}

// Download streams the body of a server-relative ref (an attachment download link,
// usually) into w.  The ref keeps whatever query string the API put on it.
func (api *API) Download(ctx context.Context, ref string, w io.Writer) error {
	ep, err := api.resolveEndpoint(ref)
	if err != nil {
		return fmt.Errorf("confluence: couldn't resolve download ref: %w", err)
	}

	req, err := api.newGetRequest(ctx, ep)
	if err != nil {
		return err
	}

	response, err := api.Client.Do(req)
	if err != nil {
		return fmt.Errorf("confluence: couldn't perform http request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return &APIError{StatusCode: response.StatusCode, Status: response.Status, URL: ep.String()}
	}

	if _, err := io.Copy(w, response.Body); err != nil {
		return fmt.Errorf("confluence: couldn't stream response body: %w", err)
	}

	return nil
}

func (api *API) newGetRequest(ctx context.Context, url *url.URL) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't instantiate http request: %w", err)
	}

	req.Header.Add("Accept", "application/json, */*")

	for k, v := range api.Headers {
		req.Header.Set(k, v)
	}

	// if username is not set, fall back to sending the token as a bearer token
	if api.username != "" && api.token != "" {
		req.SetBasicAuth(api.username, api.token)
	} else if api.token != "" {
		req.Header.Set("Authorization", "Bearer "+api.token)
	}

	return req, nil
}

// Request implements the basic Request function
func (api *API) request(ctx context.Context, url *url.URL) ([]byte, error) {
	req, err := api.newGetRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	response, err := api.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform http request: %w", err)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't read http response body: %w", err)
	}

	if err := response.Body.Close(); err != nil {
		return nil, fmt.Errorf("confluence: couldn't close response body: %w", err)
	}

	switch response.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusPartialContent, http.StatusNoContent, http.StatusResetContent:
		return body, nil
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("confluence: authentication failed: %w",
			&APIError{StatusCode: response.StatusCode, Status: response.Status, URL: url.String()})
	}

	return nil, &APIError{StatusCode: response.StatusCode, Status: response.Status, URL: url.String()}
}
