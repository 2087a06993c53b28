// Package webhook talks to the n8n judging workflow.
package webhook

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dpitt/club-bouncer/internal/judge"
)

const defaultTimeout = 60 * time.Second

type Client struct {
	URL     string
	Timeout time.Duration
	http    *http.Client
}

func New(rawURL string) *Client {
	return &Client{URL: rawURL, Timeout: defaultTimeout, http: &http.Client{}}
}

type imagePayload struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
	Filename string `json:"filename"`
}

type judgeRequest struct {
	Club  string       `json:"club"`
	Image imagePayload `json:"image"`
}

// Judge posts the submission to the workflow and returns its verdict
// verbatim. The request is bounded by the client timeout and aborts if
// ctx is cancelled first.
func (c *Client) Judge(ctx context.Context, club string, img judge.Image) (judge.Verdict, error) {
	payload := judgeRequest{
		Club: club,
		Image: imagePayload{
			Data:     base64.StdEncoding.EncodeToString(img.Data),
			MimeType: img.MimeType,
			Filename: img.Filename,
		},
	}
	b, _ := json.Marshal(payload)

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", c.URL, bytes.NewReader(b))
	if err != nil {
		return judge.Verdict{}, fmt.Errorf("%w: %v", judge.ErrDelegateFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return judge.Verdict{}, judge.ErrDelegateTimeout
		}
		return judge.Verdict{}, fmt.Errorf("%w: %v", judge.ErrDelegateFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return judge.Verdict{}, fmt.Errorf("%w: status %d", judge.ErrDelegateFailed, resp.StatusCode)
	}

	var v judge.Verdict
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return judge.Verdict{}, fmt.Errorf("%w: %v", judge.ErrDelegateMalformed, err)
	}
	return v, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue) && ue.Timeout()
}
