package gate

import (
	"golang.org/x/time/rate"
)

type tokenBucket struct {
	limiter *rate.Limiter
}

var _ Gate = &tokenBucket{}

// NewTokenBucket returns a Gate that admits a sustained rps with bursts of
// up to burst values, backed by x/time/rate. Refused values are not queued;
// Allow never blocks.
func NewTokenBucket(rps float64, burst int) Gate {
	return &tokenBucket{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (t *tokenBucket) Allow() bool {
	return t.limiter.Allow()
}
