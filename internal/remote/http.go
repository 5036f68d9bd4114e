package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// defaultTimeout bounds collection API calls when no timeout is configured.
const defaultTimeout = 30 * time.Second

// HTTP talks to a reusable-block collection API:
//
//	GET {base}/reusable-blocks        list the collection
//	GET {base}/reusable-blocks/{id}   fetch one record
//	PUT {base}/reusable-blocks/{id}   save one record
//
// Failure responses carrying the JSON envelope {"code","message"} surface
// as *Error; anything else (transport failures, undecodable bodies) stays
// a plain error so callers fall back to their generic failure shape.
type HTTP struct {
	base   string
	token  string
	client *http.Client
}

// NewHTTP creates a collection client. token, when non-empty, is sent as a
// bearer credential. A zero timeout uses the default.
func NewHTTP(baseURL, token string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTP{
		base:   baseURL,
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

// FetchAll implements Store.
func (h *HTTP) FetchAll(ctx context.Context) ([]Record, error) {
	var records []Record
	if err := h.do(ctx, http.MethodGet, h.collectionURL(""), nil, &records); err != nil {
		return nil, fmt.Errorf("fetch reusable blocks: %w", err)
	}
	return records, nil
}

// FetchOne implements Store.
func (h *HTTP) FetchOne(ctx context.Context, id string) (Record, error) {
	var rec Record
	if err := h.do(ctx, http.MethodGet, h.collectionURL(id), nil, &rec); err != nil {
		return Record{}, fmt.Errorf("fetch reusable block %s: %w", id, err)
	}
	return rec, nil
}

// Save implements Store.
func (h *HTTP) Save(ctx context.Context, rec Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("save reusable block %s: %w", rec.ID, err)
	}
	if err := h.do(ctx, http.MethodPut, h.collectionURL(rec.ID), body, nil); err != nil {
		return fmt.Errorf("save reusable block %s: %w", rec.ID, err)
	}
	return nil
}

func (h *HTTP) collectionURL(id string) string {
	u := h.base + "/reusable-blocks"
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

// do issues one request and decodes a 2xx response into out (when out is
// non-nil). Error responses are translated by decodeError.
func (h *HTTP) do(ctx context.Context, method, url string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError reads an error response body. Bodies carrying the standard
// envelope come back as *Error; everything else stays an opaque status
// error.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var envelope Error
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Code != "" {
		return &envelope
	}
	return fmt.Errorf("http %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
