package ai

import (
	"context"

	"github.com/dpitt/club-bouncer/internal/judge"
)

// Provider is a vision-capable completion backend that can rule on an
// outfit photo for a given club.
type Provider interface {
	JudgeOutfit(ctx context.Context, club judge.Club, img judge.Image) (judge.Outcome, string, error)
}
