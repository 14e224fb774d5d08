package engine

import (
	"hash/fnv"
	"math/rand"
	"time"
)

// NewPlanRand seeds a request-scoped RNG deterministically from the plan
// date and user profile, so exploration is reproducible for a given
// request.
func NewPlanRand(planDate time.Time, profile string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(planDate.Format("2006-01-02")))
	h.Write([]byte{'|'})
	h.Write([]byte(profile))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}
