package judge

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dpitt/club-bouncer/internal/config"
)

// Delegate failure classes. Clients wrap their transport errors in one of
// these so the resolver can word the user-facing message accordingly.
var (
	ErrDelegateTimeout   = errors.New("delegate timed out")
	ErrDelegateFailed    = errors.New("delegate request failed")
	ErrDelegateMalformed = errors.New("delegate response malformed")
)

const (
	mockAcceptRate   = 0.30
	mockDelayMin     = 2000 * time.Millisecond
	mockDelayMax     = 4000 * time.Millisecond
	mockFailureDelay = 2 * time.Second
)

const genericErrorMessage = "The bouncer is having a bad day. Try again later."

// WebhookDelegate forwards a submission to the n8n judging workflow and
// returns its verdict verbatim.
type WebhookDelegate interface {
	Judge(ctx context.Context, club string, img Image) (Verdict, error)
}

// VisionDelegate rules on an outfit photo using a multimodal model.
type VisionDelegate interface {
	JudgeOutfit(ctx context.Context, club Club, img Image) (Outcome, string, error)
}

// Resolver produces exactly one Verdict per submission. It holds no state
// across requests; the only mutable members are the random source guarding
// mock-mode draws and the injectable sleep used to pace the UI animation.
type Resolver struct {
	Cfg     config.Config
	Webhook WebhookDelegate
	Vision  VisionDelegate

	// Sleep paces mock-mode responses. It must respect ctx cancellation
	// and must not block other requests.
	Sleep func(ctx context.Context, d time.Duration)

	mu  sync.Mutex
	rng *rand.Rand
}

func NewResolver(cfg config.Config, wh WebhookDelegate, vd VisionDelegate) *Resolver {
	return &Resolver{
		Cfg:     cfg,
		Webhook: wh,
		Vision:  vd,
		Sleep:   sleepCtx,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Resolve validates the submission, picks the generation mode and returns
// the verdict envelope together with the HTTP status it ships with. Any
// panic below this point is converted into a generic ERROR verdict; a raw
// fault never reaches the caller.
func (r *Resolver) Resolve(ctx context.Context, sub Submission) (v Verdict, status int) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("judge: recovered from fault")
			v = Verdict{Verdict: OutcomeError, Message: genericErrorMessage, Club: UnknownClub}
			status = http.StatusInternalServerError
		}
	}()

	if sub.Club == "" {
		return Verdict{
			Verdict: OutcomeError,
			Message: "Missing club selection",
			Club:    UnknownClub,
		}, http.StatusBadRequest
	}

	club, ok := ParseClub(sub.Club)
	if !ok {
		return Verdict{
			Verdict: OutcomeError,
			Message: "That club is not on our list",
			Club:    sub.Club,
		}, http.StatusBadRequest
	}

	mode := r.Cfg.ResolveMode()
	log.Info().Str("mode", string(mode)).Str("club", string(club)).Bool("hasPhoto", sub.Image != nil).Msg("judging submission")

	switch mode {
	case config.ModeWebhook:
		return r.resolveWebhook(ctx, club, sub.Image)
	case config.ModeVision:
		return r.resolveVision(ctx, club, sub.Image)
	default:
		return r.resolveMock(ctx, club, sub.MockFailure)
	}
}

func (r *Resolver) resolveMock(ctx context.Context, club Club, failure bool) (Verdict, int) {
	forced := strings.ToLower(r.Cfg.MockOutcome)

	if failure || forced == "failure" || forced == "error" {
		r.Sleep(ctx, mockFailureDelay)
		return Verdict{
			Verdict: OutcomeError,
			Message: "I quit being a bouncer",
			Club:    string(club),
			Mock:    true,
		}, http.StatusInternalServerError
	}

	r.Sleep(ctx, r.mockDelay())

	var outcome Outcome
	switch forced {
	case "accept", "success-approve":
		outcome = OutcomeAccept
	case "reject":
		outcome = OutcomeReject
	default:
		if r.chance() < mockAcceptRate {
			outcome = OutcomeAccept
		} else {
			outcome = OutcomeReject
		}
	}

	lines := mockMessages[club][outcome]
	if len(lines) == 0 {
		return Verdict{
			Verdict: OutcomeError,
			Message: "The bouncer has nothing to say about that club",
			Club:    string(club),
			Mock:    true,
		}, http.StatusOK
	}

	return Verdict{
		Verdict: outcome,
		Message: lines[r.intn(len(lines))],
		Club:    string(club),
		Mock:    true,
	}, http.StatusOK
}

func (r *Resolver) resolveWebhook(ctx context.Context, club Club, img *Image) (Verdict, int) {
	if img == nil || len(img.Data) == 0 {
		return Verdict{
			Verdict: OutcomeError,
			Message: "Missing photo",
			Club:    string(club),
		}, http.StatusBadRequest
	}
	if r.Webhook == nil || r.Cfg.WebhookURL == "" {
		return Verdict{
			Verdict: OutcomeError,
			Message: "System configuration error: N8N_WEBHOOK_URL missing",
			Club:    string(club),
		}, http.StatusInternalServerError
	}

	// The delegate's judgment fields pass through verbatim.
	v, err := r.Webhook.Judge(ctx, string(club), *img)
	if err != nil {
		log.Error().Err(err).Str("club", string(club)).Msg("webhook delegate failed")
		return Verdict{
			Verdict: OutcomeError,
			Message: delegateErrorMessage(err),
			Club:    string(club),
		}, http.StatusInternalServerError
	}
	return v, http.StatusOK
}

func (r *Resolver) resolveVision(ctx context.Context, club Club, img *Image) (Verdict, int) {
	if img == nil || len(img.Data) == 0 {
		return Verdict{
			Verdict: OutcomeError,
			Message: "Missing photo",
			Club:    string(club),
		}, http.StatusBadRequest
	}
	if r.Vision == nil || r.Cfg.OpenAIKey == "" {
		return Verdict{
			Verdict: OutcomeError,
			Message: "System configuration error: OPENAI_API_KEY missing",
			Club:    string(club),
		}, http.StatusInternalServerError
	}

	outcome, message, err := r.Vision.JudgeOutfit(ctx, club, *img)
	if err != nil {
		log.Error().Err(err).Str("club", string(club)).Msg("vision delegate failed")
		return Verdict{
			Verdict: OutcomeError,
			Message: delegateErrorMessage(err),
			Club:    string(club),
		}, http.StatusInternalServerError
	}
	return Verdict{Verdict: outcome, Message: message, Club: string(club)}, http.StatusOK
}

func delegateErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrDelegateTimeout):
		return "The bouncer timed out sizing you up. Try again."
	case errors.Is(err, ErrDelegateMalformed):
		return "The bouncer mumbled something unintelligible. Try again."
	default:
		return "The judging service turned us away. Try again later."
	}
}

func (r *Resolver) mockDelay() time.Duration {
	jitter := time.Duration(r.intn(int(mockDelayMax - mockDelayMin)))
	return mockDelayMin + jitter
}

func (r *Resolver) chance() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *Resolver) intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// sleepCtx waits for d without holding any shared resource, returning
// early if the request is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
