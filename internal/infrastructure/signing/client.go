// Package signing talks to a Facturama-compatible CFDI signing API.
package signing

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sangkips/lexdesk-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// ErrMissingXML is returned when neither the response nor the download
// endpoint carry the signed XML.
var ErrMissingXML = errors.New("signed document has no XML content")

// Config holds the API credentials
type Config struct {
	BaseURL  string
	User     string
	Password string
	Timeout  time.Duration
}

// Client calls the signing API
type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger
}

// NewClient creates a signing client. Every call is bounded by cfg.Timeout.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger.WithComponent("signing"),
	}
}

// APIError is a non-201 answer from the signing API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("signing rejected (%d): %s", e.StatusCode, e.Message)
}

// Sign submits the document and returns the stamp and the signed XML. Once
// the API answers 201 with a stamp the document exists at the authority, so a
// failure to retrieve the XML is logged and leaves Result.XML empty; callers
// can fetch it later with DownloadXML.
func (c *Client) Sign(ctx context.Context, doc *CFDIRequest) (*Result, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode cfdi: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/cfdis", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read signing response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: ErrorMessage(raw)}
		c.log.Warn().Int("status", resp.StatusCode).Str("folio", doc.Folio).Msg(apiErr.Message)
		return nil, apiErr
	}

	var out CFDIResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode signing response: %w", err)
	}
	stamp := out.Stamp()
	if out.Id == "" || stamp.Uuid == "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "response carries no stamp"}
	}

	xml, err := c.xmlFor(ctx, &out)
	if err != nil {
		c.log.Error().Err(err).
			Str("folio", doc.Folio).
			Str("signature_id", out.Id).
			Str("fiscal_uuid", stamp.Uuid).
			Msg("stamped document xml not retrieved")
		xml = nil
	}

	stampedAt, _ := time.Parse("2006-01-02T15:04:05", stamp.Date)
	return &Result{
		SignatureID: out.Id,
		FiscalUUID:  stamp.Uuid,
		CfdiSign:    stamp.CfdiSign,
		SatSign:     stamp.SatSign,
		StampedAt:   stampedAt,
		XML:         xml,
	}, nil
}

func (c *Client) xmlFor(ctx context.Context, out *CFDIResponse) ([]byte, error) {
	if out.Content != "" {
		return base64.StdEncoding.DecodeString(out.Content)
	}
	return c.DownloadXML(ctx, out.Id)
}

// DownloadXML fetches the signed XML of an issued document.
func (c *Client) DownloadXML(ctx context.Context, id string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, "/cfdi/xml/issued/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read xml response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: ErrorMessage(raw)}
	}

	var file fileResponse
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode xml response: %w", err)
	}
	if file.Content == "" {
		return nil, ErrMissingXML
	}
	return base64.StdEncoding.DecodeString(file.Content)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.User, c.cfg.Password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("signing api %s %s: %w", method, path, err)
	}
	logger.FromContext(ctx).Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("signing api call")
	return resp, nil
}

// ErrorMessage extracts a readable message from an error body: Message plus
// " -> key: first error, ..." for every ModelState entry in key order. Bodies
// that are not JSON are returned as they are.
func ErrorMessage(body []byte) string {
	var parsed struct {
		Message    string              `json:"Message"`
		ModelState map[string][]string `json:"ModelState"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return strings.TrimSpace(string(body))
	}

	msg := parsed.Message
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if len(parsed.ModelState) == 0 {
		return msg
	}

	keys := make([]string, 0, len(parsed.ModelState))
	for k := range parsed.ModelState {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	details := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := parsed.ModelState[k]; len(v) > 0 {
			details = append(details, fmt.Sprintf("%s: %s", k, v[0]))
		}
	}
	if len(details) == 0 {
		return msg
	}
	return msg + " -> " + strings.Join(details, ", ")
}

// VerificationURL builds the public verification link encoded in the QR,
// keeping the parameter order the verifier documents.
func VerificationURL(fiscalUUID, issuerRFC, receiverRFC string, total decimal.Decimal, sealTail string) string {
	return fmt.Sprintf("%s?id=%s&re=%s&rr=%s&tt=%s&fe=%s",
		VerificationEndpoint,
		url.QueryEscape(fiscalUUID),
		url.QueryEscape(issuerRFC),
		url.QueryEscape(receiverRFC),
		total.StringFixed(2),
		url.QueryEscape(sealTail),
	)
}
