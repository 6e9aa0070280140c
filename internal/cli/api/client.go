// Package api is a thin HTTP client for the registry, used by the rxcli tool.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Client talks to a running registry API server.
type Client struct {
	baseURL string
	hc      *http.Client
}

// New builds a Client for the given base URL. An empty base URL falls back to
// the RXLEDGER_API environment variable, then to http://localhost:8080.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("RXLEDGER_API")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 30 * time.Second},
	}
}

type apiError struct {
	RequestID string `json:"request_id"`
	Error     struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do runs the request and decodes the JSON response into out. Non-2xx
// responses come back as errors carrying the server's error code.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e apiError
		if json.Unmarshal(body, &e) == nil && e.Error.Code != "" {
			return fmt.Errorf("%s: %s", e.Error.Code, e.Error.Message)
		}
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (c *Client) postJSON(path string, payload, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// IssueResult is the response to a successful issuance.
type IssueResult struct {
	ID string `json:"id"`
}

// Issue registers a new prescription record.
func (c *Client) Issue(issuer, recipient, fp, locator string, expiresAt time.Time) (*IssueResult, error) {
	payload := map[string]any{
		"issuer":      issuer,
		"recipient":   recipient,
		"fingerprint": fp,
		"locator":     locator,
		"expires_at":  expiresAt.Unix(),
	}
	var res IssueResult
	if err := c.postJSON("/prescriptions", payload, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Fulfillment mirrors the server's fulfillment entry.
type Fulfillment struct {
	PrescriptionID string    `json:"prescription_id"`
	Party          string    `json:"party"`
	PartyName      string    `json:"party_name"`
	FulfilledAt    time.Time `json:"fulfilled_at"`
}

// Fulfill appends a fulfillment entry for the dispensing party.
func (c *Client) Fulfill(prescriptionID, dispenser string) (*Fulfillment, error) {
	payload := map[string]string{"dispenser": dispenser}
	var res Fulfillment
	if err := c.postJSON("/prescriptions/"+url.PathEscape(prescriptionID)+"/fulfillments", payload, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Prescription mirrors the server's full record.
type Prescription struct {
	ID           string        `json:"id"`
	Issuer       string        `json:"issuer"`
	Recipient    string        `json:"recipient"`
	Fingerprint  string        `json:"fingerprint"`
	Locator      string        `json:"locator"`
	IssuedAt     time.Time     `json:"issued_at"`
	ExpiresAt    time.Time     `json:"expires_at"`
	Fulfillments []Fulfillment `json:"fulfillments"`
}

// GetDetails fetches the full record including its fulfillment log.
func (c *Client) GetDetails(prescriptionID string) (*Prescription, error) {
	var res Prescription
	if err := c.getJSON("/prescriptions/"+url.PathEscape(prescriptionID), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ScanPayload fetches the string to encode into the prescription's QR code.
func (c *Client) ScanPayload(prescriptionID string) (string, error) {
	var res struct {
		Payload string `json:"payload"`
	}
	if err := c.getJSON("/prescriptions/"+url.PathEscape(prescriptionID)+"/scan-payload", &res); err != nil {
		return "", err
	}
	return res.Payload, nil
}

// Verify submits a scanned payload and returns the verdict.
func (c *Client) Verify(payload string) (string, error) {
	var res struct {
		Verdict string `json:"verdict"`
	}
	if err := c.postJSON("/verify", map[string]string{"payload": payload}, &res); err != nil {
		return "", err
	}
	return res.Verdict, nil
}

// HasFulfilled reports whether a party already fulfilled the record.
func (c *Client) HasFulfilled(prescriptionID, party string) (bool, error) {
	var res struct {
		Fulfilled bool `json:"fulfilled"`
	}
	path := "/prescriptions/" + url.PathEscape(prescriptionID) + "/fulfillments/" + url.PathEscape(party)
	if err := c.getJSON(path, &res); err != nil {
		return false, err
	}
	return res.Fulfilled, nil
}

// ListResult is the response to an index lookup.
type ListResult struct {
	IDs   []string `json:"ids"`
	Total int      `json:"total"`
}

// List looks up prescription IDs by exactly one of recipient or issuer.
func (c *Client) List(recipient, issuer string) (*ListResult, error) {
	q := url.Values{}
	if recipient != "" {
		q.Set("recipient", recipient)
	}
	if issuer != "" {
		q.Set("issuer", issuer)
	}
	var res ListResult
	if err := c.getJSON("/prescriptions?"+q.Encode(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// StoredDocument mirrors the server's upload response.
type StoredDocument struct {
	Fingerprint string `json:"fingerprint"`
	Locator     string `json:"locator"`
	Size        int64  `json:"size"`
}

// StoreDocument uploads canonical document bytes and returns fingerprint and
// locator, ready to pass to Issue.
func (c *Client) StoreDocument(path string) (*StoredDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", f.Name())
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/documents", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var res StoredDocument
	if err := c.do(req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// DocumentURL fetches a time-limited download URL for a stored document.
func (c *Client) DocumentURL(fp string) (string, error) {
	var res struct {
		URL string `json:"url"`
	}
	if err := c.getJSON("/documents/"+url.PathEscape(fp)+"/url", &res); err != nil {
		return "", err
	}
	return res.URL, nil
}
