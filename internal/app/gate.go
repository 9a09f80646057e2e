/**
 * @description
 * The usage gate decides whether a user may run another generation. It is a
 * pure function over already-loaded state: the free tier covers exactly one
 * generation, after which an active subscription is required.
 */
package app

import (
	"errors"

	"github.com/jleboube/ai-agent-manager/internal/domain"
)

// DenyReasonFreeTierExhausted is the machine-readable reason returned with a
// 403 when the free tier is used up and no active subscription exists.
const DenyReasonFreeTierExhausted = "free-tier-exhausted"

// ErrFreeTierExhausted is returned by generation operations when the usage
// gate denies the request.
var ErrFreeTierExhausted = errors.New("free tier exhausted")

// CanGenerate reports whether a user with the given lifetime generation count
// and subscription may run another generation.
func CanGenerate(generationCount int, sub *domain.Subscription) bool {
	return generationCount == 0 || sub.IsActive()
}
