// Package client provides a typed HTTP client for a reviewnet node.
//
// Mutating calls are signed with the caller's private key, so the node
// recovers the acting principal from the request itself. Encrypted review
// scores are encoded through a configured fhe.Encoder; interoperability with
// the node requires sharing its cipher seed.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/OswaldHeaney/reviewnet/crypto"
	"github.com/OswaldHeaney/reviewnet/fhe"
	"github.com/OswaldHeaney/reviewnet/protocol"
)

// Config carries the client's connection settings and identity.
type Config struct {
	// BaseURL is the node's public HTTP address.
	BaseURL string

	// PrivateKey signs mutating requests. Required for any operation beyond
	// the public listings.
	PrivateKey crypto.PrivateKey

	// Encoder encodes review scores for submission. Required for
	// SubmitReview.
	Encoder fhe.Encoder

	// Timeout bounds each request. Zero uses a 30 second default.
	Timeout time.Duration
}

// Client talks to a single reviewnet node.
type Client struct {
	cfg       Config
	principal crypto.Principal
	http      *http.Client
}

// New creates a client for the node at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL cannot be empty")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.PrivateKey != nil {
		principal, err := cfg.PrivateKey.Principal()
		if err != nil {
			return nil, fmt.Errorf("deriving principal: %w", err)
		}
		c.principal = principal
	}
	return c, nil
}

// Principal returns the identity this client signs with.
func (c *Client) Principal() crypto.Principal {
	return c.principal
}

// SubmitPaper submits a paper and returns its assigned id.
func (c *Client) SubmitPaper(ctx context.Context, title, abstract, category string) (uint64, error) {
	resp, err := postSigned[protocol.SubmitPaperRequest, protocol.SubmitPaperResponse](ctx, c, "/papers",
		&protocol.SubmitPaperRequest{Title: title, Abstract: abstract, Category: category})
	if err != nil {
		return 0, err
	}
	return resp.PaperID, nil
}

// SubmitReview encodes the two scores, signs the request, and submits an
// encrypted review of the paper. Recommendation is 0 or 1; quality is 1 to 4.
func (c *Client) SubmitReview(ctx context.Context, paperID uint64, recommendation, quality uint8, comment string) (uint64, error) {
	if c.cfg.Encoder == nil {
		return 0, errors.New("encoder not configured")
	}

	rec, err := c.encode(recommendation)
	if err != nil {
		return 0, fmt.Errorf("encoding recommendation: %w", err)
	}
	qual, err := c.encode(quality)
	if err != nil {
		return 0, fmt.Errorf("encoding quality: %w", err)
	}

	resp, err := postSigned[protocol.SubmitReviewRequest, protocol.SubmitReviewResponse](ctx, c, "/reviews",
		&protocol.SubmitReviewRequest{
			PaperID:        paperID,
			Recommendation: rec,
			Quality:        qual,
			Comment:        comment,
		})
	if err != nil {
		return 0, err
	}
	return resp.ReviewID, nil
}

// ToggleActive flips the active flag of a paper the caller authored.
func (c *Client) ToggleActive(ctx context.Context, paperID uint64) error {
	_, err := postSignedNoBody[protocol.ToggleActiveRequest](ctx, c, "/papers/toggle-active",
		&protocol.ToggleActiveRequest{PaperID: paperID})
	return err
}

// ForceDeactivate deactivates a paper. Superuser identity required.
func (c *Client) ForceDeactivate(ctx context.Context, paperID uint64) error {
	_, err := postSignedNoBody[protocol.ForceDeactivateRequest](ctx, c, "/papers/force-deactivate",
		&protocol.ForceDeactivateRequest{PaperID: paperID})
	return err
}

// GetEncryptedReview retrieves the opaque ciphertext handles of a review.
// Authorized for the parent paper's author and the superuser.
func (c *Client) GetEncryptedReview(ctx context.Context, reviewID uint64) (*protocol.EncryptedReviewResponse, error) {
	return postSigned[protocol.GetEncryptedReviewRequest, protocol.EncryptedReviewResponse](ctx, c, "/reviews/encrypted",
		&protocol.GetEncryptedReviewRequest{ReviewID: reviewID})
}

// ListReviewable returns the papers the client's principal may still review.
func (c *Client) ListReviewable(ctx context.Context) ([]protocol.PaperInfo, error) {
	if c.principal.IsZero() {
		return nil, errors.New("private key not configured")
	}
	papers, err := getJSON[[]protocol.PaperInfo](ctx, c, "/papers/reviewable?principal="+url.QueryEscape(c.principal.String()))
	if err != nil {
		return nil, err
	}
	return *papers, nil
}

// ListOwn returns the papers the client's principal authored.
func (c *Client) ListOwn(ctx context.Context) ([]protocol.PaperInfo, error) {
	if c.principal.IsZero() {
		return nil, errors.New("private key not configured")
	}
	papers, err := getJSON[[]protocol.PaperInfo](ctx, c, "/papers/own?principal="+url.QueryEscape(c.principal.String()))
	if err != nil {
		return nil, err
	}
	return *papers, nil
}

// ListReviews returns all reviews of a paper.
func (c *Client) ListReviews(ctx context.Context, paperID uint64) ([]protocol.ReviewInfo, error) {
	reviews, err := getJSON[[]protocol.ReviewInfo](ctx, c, fmt.Sprintf("/papers/%d/reviews", paperID))
	if err != nil {
		return nil, err
	}
	return *reviews, nil
}

// Counts returns the node's running totals.
func (c *Client) Counts(ctx context.Context) (*protocol.CountsResponse, error) {
	counts, err := getJSON[protocol.CountsResponse](ctx, c, "/counts")
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (c *Client) encode(score uint8) (protocol.EncryptedInput, error) {
	ciphertext, proof, err := c.cfg.Encoder.Encode(fhe.EncodeScore(score), c.principal)
	if err != nil {
		return protocol.EncryptedInput{}, err
	}
	return protocol.EncryptedInput{Ciphertext: ciphertext, Proof: proof}, nil
}

// StatusError reports a non-2xx response from the node.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("node returned status %d: %s", e.Code, e.Body)
}

func postSigned[Req, Resp any](ctx context.Context, c *Client, path string, req *Req) (*Resp, error) {
	body, err := doSignedPost(ctx, c, path, req)
	if err != nil {
		return nil, err
	}
	return protocol.UnmarshalMessage[Resp](body)
}

func postSignedNoBody[Req any](ctx context.Context, c *Client, path string, req *Req) ([]byte, error) {
	return doSignedPost(ctx, c, path, req)
}

func doSignedPost[Req any](ctx context.Context, c *Client, path string, req *Req) ([]byte, error) {
	if c.cfg.PrivateKey == nil {
		return nil, errors.New("private key not configured")
	}

	signed, err := protocol.NewSigned(c.cfg.PrivateKey, req)
	if err != nil {
		return nil, fmt.Errorf("signing request: %w", err)
	}
	payload, err := protocol.SerializeMessage(signed)
	if err != nil {
		return nil, fmt.Errorf("serializing request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq)
}

func getJSON[T any](ctx context.Context, c *Client, path string) (*T, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}
	return protocol.UnmarshalMessage[T](body)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	return body, nil
}
