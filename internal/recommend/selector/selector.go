// Package selector applies the recency filter and picks a diversified subset
// from the best-scoring candidates.
package selector

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"reco-workers/internal/models"
)

// Shuffler is the only source of randomness in selection. *rand.Rand
// satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type Selector struct {
	topN int
	mu   sync.Mutex
	rng  Shuffler
}

// New returns a selector shuffling the best topN. A nil rng uses a
// time-seeded source.
func New(topN int, rng Shuffler) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{topN: topN, rng: rng}
}

type entry struct {
	c          models.PlaceCandidate
	backfilled bool
}

// Select returns min(k, available) candidates. Candidates known to be closed
// in an hour are never returned. Recently shown candidates are used only
// when nothing else remains or to top the pool up to k.
func (s *Selector) Select(cands []models.PlaceCandidate, recent models.RecentlyShown, k int) []models.PlaceCandidate {
	if k <= 0 {
		return []models.PlaceCandidate{}
	}

	var fresh, excluded []entry
	for _, c := range cands {
		if c.ExplicitlyClosedInOneHour() {
			continue
		}
		if recent.Contains(c.SecondaryProviderID, c.Name()) {
			excluded = append(excluded, entry{c: c})
		} else {
			fresh = append(fresh, entry{c: c})
		}
	}

	pool := fresh
	if len(pool) == 0 {
		pool = excluded
		excluded = nil
	}
	for _, e := range excluded {
		if len(pool) >= k {
			break
		}
		e.backfilled = true
		pool = append(pool, e)
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].backfilled != pool[j].backfilled {
			return !pool[i].backfilled
		}
		return pool[i].c.Score > pool[j].c.Score
	})

	top := pool
	if s.topN > 0 && len(top) > s.topN {
		top = top[:s.topN]
	}

	s.mu.Lock()
	s.rng.Shuffle(len(top), func(i, j int) { top[i], top[j] = top[j], top[i] })
	s.mu.Unlock()

	if len(top) > k {
		top = top[:k]
	}
	out := make([]models.PlaceCandidate, 0, len(top))
	for _, e := range top {
		out = append(out, e.c)
	}
	return out
}
