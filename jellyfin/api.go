package jellyfin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jellytok/jellytok/util"
)

// Authenticate exchanges credentials for an access token. On success the
// client keeps the token for subsequent calls.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*User, error) {
	var resp struct {
		User struct {
			ID   string `json:"Id"`
			Name string `json:"Name"`
		} `json:"User"`
		AccessToken string `json:"AccessToken"`
	}

	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/Users/AuthenticateByName",
		body: map[string]string{
			"Username": username,
			"Pw":       password,
		},
		header: http.Header{"X-Emby-Authorization": {c.authorization()}},
	}, &resp)
	if err != nil {
		var status *StatusError
		if errors.As(err, &status) {
			return nil, fmt.Errorf("%w: %s", ErrAuthentication, status)
		}
		return nil, err
	}

	if resp.AccessToken == "" || resp.User.ID == "" {
		return nil, fmt.Errorf("%w: empty token in response", ErrAuthentication)
	}

	c.Token = resp.AccessToken
	return &User{ID: resp.User.ID, Name: resp.User.Name, AccessToken: resp.AccessToken}, nil
}

// PublicInfo fetches the unauthenticated server description.
func (c *Client) PublicInfo(ctx context.Context) (*ServerInfo, error) {
	var info ServerInfo
	if err := c.do(ctx, request{method: http.MethodGet, path: "/System/Info/Public"}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Libraries lists the user's top-level views.
func (c *Client) Libraries(ctx context.Context, userID string) ([]Library, error) {
	var resp struct {
		Items []Library `json:"Items"`
	}

	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/Users/" + url.PathEscape(userID) + "/Views",
		auth:   true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return resp.Items, nil
}

// Items fetches one page of playable items.
func (c *Client) Items(ctx context.Context, q Query) ([]*Item, error) {
	var resp struct {
		Items            []*Item `json:"Items"`
		TotalRecordCount int     `json:"TotalRecordCount"`
	}

	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/Users/" + url.PathEscape(q.UserID) + "/Items",
		query:  q.Values(),
		auth:   true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return resp.Items, nil
}

// SetFavorite marks or unmarks an item. The call states the desired end value, so repeating it is harmless.
func (c *Client) SetFavorite(ctx context.Context, userID, itemID string, favorite bool) error {
	method := http.MethodPost
	if !favorite {
		method = http.MethodDelete
	}

	return c.do(ctx, request{
		method: method,
		path:   "/Users/" + url.PathEscape(userID) + "/FavoriteItems/" + url.PathEscape(itemID),
		auth:   true,
	}, nil)
}

// ReportProgress posts a playback position.
func (c *Client) ReportProgress(ctx context.Context, p Progress) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/Sessions/Playing/Progress",
		body:   p,
		auth:   true,
	}, nil)
}

// ImageURL is the primary image of an item, or "" when the item has none.
func (c *Client) ImageURL(itemID, tag string) string {
	if tag == "" {
		return ""
	}

	v := url.Values{}
	v.Set("tag", tag)
	v.Set("quality", "90")
	return c.BaseURL + "/Items/" + url.PathEscape(itemID) + "/Images/Primary?" + v.Encode()
}

// Image downloads the primary image of an item.
func (c *Client) Image(ctx context.Context, itemID, tag string) ([]byte, error) {
	target := c.ImageURL(itemID, tag)
	if target == "" {
		return nil, ErrNotFound
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Emby-Token", c.Token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer util.Ignore(resp.Body.Close)

	if err := checkStatus(request{method: http.MethodGet, path: "/Items/" + itemID + "/Images/Primary"}, resp.StatusCode); err != nil {
		return nil, err
	}

	return io.ReadAll(resp.Body)
}

// WebURL is the item's details page in the server's web client.
func (c *Client) WebURL(itemID string) string {
	return c.BaseURL + "/web/index.html#!/details?id=" + url.QueryEscape(itemID)
}
