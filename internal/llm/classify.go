package llm

import (
	"context"
	"time"

	"github.com/signalnine/trajscope/internal/taxonomy"
	"go.uber.org/zap"
)

// retryBackoff is the pause before the single retry of a failed call.
const retryBackoff = 2 * time.Second

// ClassifyOne runs one classification call for a prompt. A transport or
// provider failure is retried once; a second failure is recorded as an
// api_error verdict, never returned as an error — one bad call must not
// abort a multi-hundred-case batch. The category is coerced into the closed
// taxonomy, and the inter-call delay is applied after every call so the
// caller never has to rate-limit.
func ClassifyOne(ctx context.Context, client Client, prompt string, delay time.Duration, log *zap.Logger) Verdict {
	defer time.Sleep(delay)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			log.Warn("classification call failed, retrying", zap.Error(lastErr))
			time.Sleep(retryBackoff)
		}
		text, err := client.Classify(ctx, prompt)
		if err != nil {
			lastErr = err
			continue
		}
		v := ParseVerdict(text)
		v.PrimaryCategory = taxonomy.Normalize(v.PrimaryCategory)
		return v
	}

	return Verdict{
		PrimaryCategory: taxonomy.APIError,
		SubCategory:     "none",
		Explanation:     "API failed after retry: " + truncate(lastErr.Error(), 200),
	}
}
