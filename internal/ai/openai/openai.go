package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dpitt/club-bouncer/internal/judge"
)

type Client struct {
	APIKey  string
	BaseURL string
	Model   string
	http    *http.Client
}

func New(apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

const systemPrompt = `You are the door selector of a Berlin club. Judge the photo in two steps.

Step 1 - validation: the photo must show at least one person, and their outfit must be visible enough to judge. If not, reject with a short explanation of what you could not see.

Step 2 - judgment: if the photo is valid, apply the persona for the selected club and decide ACCEPT or REJECT. Your message is spoken at the door: two sentences at most, in character, addressed to the guest.`

// personas carries the per-club rubric appended to the system prompt.
// Each one has its own accept/reject bias.
var personas = map[judge.Club]string{
	judge.ClubBerghain: `Persona: Berghain doorman. Merciless, monosyllabic, allergic to effort that shows. All black, worn-in, authentic wins; costumes, smiles and tourist energy lose. Reject roughly 70 percent of guests.`,
	judge.ClubKitKat: `Persona: KitKat door selector. Fetish-forward and body-positive. Leather, latex, mesh, skin and commitment to the theme win; street clothes and spectators lose. Reject roughly half of the guests.`,
	judge.ClubSisyphus: `Persona: Sisyphos gate keeper. Warm but wild. Color, glitter, DIY rave chaos and good energy win; stiff, corporate or joyless looks lose. Reject roughly 30 percent of guests.`,
}

type verdictSchema struct {
	Verdict string `json:"verdict"`
	Message string `json:"message"`
}

// JudgeOutfit sends one chat-completions request carrying the system
// persona and the photo as an inline low-detail data URL, constrained to
// a strict JSON verdict.
func (c *Client) JudgeOutfit(ctx context.Context, club judge.Club, img judge.Image) (judge.Outcome, string, error) {
	if c.APIKey == "" {
		return "", "", errors.New("missing OPENAI_API_KEY")
	}

	dataURL := "data:" + img.MimeType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
	payload := map[string]any{
		"model": c.Model,
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt + "\n\n" + personas[club]},
			{"role": "user", "content": []map[string]any{
				{"type": "text", "text": "Guest at the door of " + string(club) + ". Your call."},
				{"type": "image_url", "image_url": map[string]any{"url": dataURL, "detail": "low"}},
			}},
		},
		"temperature": 0.8,
		"max_tokens":  200,
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "bouncer_verdict",
				"strict": true,
				"schema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"verdict": map[string]any{"type": "string", "enum": []string{"ACCEPT", "REJECT"}},
						"message": map[string]any{"type": "string"},
					},
					"required":             []string{"verdict", "message"},
					"additionalProperties": false,
				},
			},
		},
	}

	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v1/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", judge.ErrDelegateFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", "", judge.ErrDelegateTimeout
		}
		return "", "", fmt.Errorf("%w: %v", judge.ErrDelegateFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", "", fmt.Errorf("%w: openai status %d", judge.ErrDelegateFailed, resp.StatusCode)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", fmt.Errorf("%w: %v", judge.ErrDelegateMalformed, err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", "", fmt.Errorf("%w: no choices", judge.ErrDelegateMalformed)
	}

	var v verdictSchema
	if err := json.Unmarshal([]byte(out.Choices[0].Message.Content), &v); err != nil {
		return "", "", fmt.Errorf("%w: %v", judge.ErrDelegateMalformed, err)
	}
	switch v.Verdict {
	case string(judge.OutcomeAccept):
		return judge.OutcomeAccept, v.Message, nil
	case string(judge.OutcomeReject):
		return judge.OutcomeReject, v.Message, nil
	default:
		return "", "", fmt.Errorf("%w: verdict %q", judge.ErrDelegateMalformed, v.Verdict)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue) && ue.Timeout()
}
