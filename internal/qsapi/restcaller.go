package qsapi

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

const signingService = "quicksight"

// RESTCaller drives the QuickSight REST surface directly with SigV4-signed
// requests. The typed SDK client is not used because asset definitions must
// round-trip the dump file verbatim, and the SDK's union-typed shapes do not
// survive a JSON round-trip.
type RESTCaller struct {
	creds      aws.CredentialsProvider
	signer     *v4.Signer
	httpClient *http.Client
	region     string
	endpoint   string
}

// RESTOption customizes a RESTCaller.
type RESTOption func(*RESTCaller)

// WithEndpoint overrides the service endpoint, e.g. to point at a local
// test double.
func WithEndpoint(endpoint string) RESTOption {
	return func(c *RESTCaller) {
		c.endpoint = strings.TrimSuffix(endpoint, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) RESTOption {
	return func(c *RESTCaller) {
		c.httpClient = hc
	}
}

// NewRESTCaller builds a caller from a resolved AWS config.
func NewRESTCaller(cfg aws.Config, opts ...RESTOption) *RESTCaller {
	c := &RESTCaller{
		creds:      cfg.Credentials,
		signer:     v4.NewSigner(),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		region:     cfg.Region,
		endpoint:   fmt.Sprintf("https://quicksight.%s.amazonaws.com", cfg.Region),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call renders the operation path, signs the request and decodes the JSON
// response. Non-2xx responses are mapped to *APIError with the provider's
// error code; successful responses have the HTTP status injected as "Status"
// when the body lacks one, matching the shape the validation helpers expect.
func (c *RESTCaller) Call(ctx context.Context, op Op, params Document) (Document, error) {
	path, body, err := op.render(params)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if (op.Method == http.MethodPost || op.Method == http.MethodPut) && len(body) > 0 {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op.Name, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, op.Method, c.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op.Name, err)
	}
	if len(payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	creds, err := c.creds.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: resolve credentials: %w", op.Name, err)
	}

	sum := sha256.Sum256(payload)
	if err := c.signer.SignHTTP(ctx, creds, req, hex.EncodeToString(sum[:]), signingService, c.region, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("%s: sign request: %w", op.Name, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.Name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", op.Name, err)
	}

	var doc Document
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%s: decode response (status %d): %w", op.Name, resp.StatusCode, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Op:         op.Name,
			Code:       errorCode(resp, doc),
			Message:    errorMessage(doc),
			HTTPStatus: resp.StatusCode,
		}
	}

	if doc == nil {
		doc = Document{}
	}
	if _, ok := doc["Status"]; !ok {
		doc["Status"] = resp.StatusCode
	}
	return doc, nil
}

// errorCode extracts the provider error code from the x-amzn-errortype
// header or the body's __type member, stripping URI and namespace prefixes.
func errorCode(resp *http.Response, doc Document) string {
	code := resp.Header.Get("X-Amzn-Errortype")
	if code == "" && doc != nil {
		code = doc.String("__type")
	}
	if i := strings.Index(code, ":"); i >= 0 {
		code = code[:i]
	}
	if i := strings.LastIndex(code, "#"); i >= 0 {
		code = code[i+1:]
	}
	return code
}

func errorMessage(doc Document) string {
	if doc == nil {
		return ""
	}
	if m := doc.String("Message"); m != "" {
		return m
	}
	return doc.String("message")
}
