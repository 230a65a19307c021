package priority

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/reelroom/reelroom/internal/tmdb"
)

// providerPageSize is how many records a full discover page carries; a
// short page means there is nothing further to fetch.
const providerPageSize = 20

// maxTierPages bounds how deep one tier pages into the provider.
const maxTierPages = 3

// Source fetches candidate content from the catalog.
type Source interface {
	Discover(ctx context.Context, q tmdb.DiscoverQuery) ([]tmdb.Item, error)
}

// Ranker builds tiered, intra-tier-shuffled candidate lists from a
// catalog source. It is stateless apart from its random source.
type Ranker struct {
	src Source
	log *slog.Logger
	rng *rand.Rand
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithRand sets a deterministic random source (for testing). The default
// is a fresh source per Rank call, safe under concurrent use.
func WithRand(rng *rand.Rand) Option {
	return func(r *Ranker) {
		r.rng = rng
	}
}

// NewRanker creates a new Ranker.
func NewRanker(src Source, log *slog.Logger, opts ...Option) *Ranker {
	r := &Ranker{src: src, log: log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// tierSpec parameterizes the shared fetch → filter → exclude → shuffle →
// take pipeline that all three tiers run through.
type tierSpec struct {
	priority Priority
	mode     tmdb.GenreMode
	match    func(itemGenres []int) bool
}

// Rank assembles at most target items for the given filter, tier by
// tier in fixed order. The caller's exclusions apply to every tier;
// items placed by an earlier tier are excluded from later ones. A tier
// whose fetch fails contributes nothing and the pipeline continues, so
// the only error surface is the input itself, validated upstream.
func (r *Ranker) Rank(ctx context.Context, media tmdb.MediaType, genreIDs []int, excludeIDs map[string]struct{}, target int) []Ranked {
	var out []Ranked
	for _, b := range r.RankBatches(ctx, media, genreIDs, excludeIDs, target) {
		for _, it := range b.Items {
			out = append(out, Ranked{Item: it, Priority: b.Priority})
		}
	}
	return out
}

// RankBatches is Rank with per-tier contributions kept separate.
func (r *Ranker) RankBatches(ctx context.Context, media tmdb.MediaType, genreIDs []int, excludeIDs map[string]struct{}, target int) []Batch {
	if target <= 0 {
		return nil
	}

	// The provider speaks the TV taxonomy for TV content, so genre
	// membership checks run against the translated IDs.
	effective := tmdb.TranslateGenres(media, genreIDs)

	var tiers []tierSpec
	if len(genreIDs) > 0 {
		tiers = []tierSpec{
			{AllGenres, tmdb.GenreModeAll, func(g []int) bool { return containsAll(g, effective) }},
			{AnyGenre, tmdb.GenreModeAny, func(g []int) bool { return containsAny(g, effective) && !containsAll(g, effective) }},
			{Popular, tmdb.GenreModeNone, func(g []int) bool { return !containsAny(g, effective) }},
		}
	} else {
		tiers = []tierSpec{
			{Popular, tmdb.GenreModeNone, func([]int) bool { return true }},
		}
	}

	// Never mutate the caller's exclusion set.
	seen := make(map[string]struct{}, len(excludeIDs)+target)
	for id := range excludeIDs {
		seen[id] = struct{}{}
	}

	rng := r.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	var batches []Batch
	remaining := target
	for _, tier := range tiers {
		if remaining <= 0 {
			break
		}

		want := remaining
		if tier.priority == AllGenres {
			// The top tier is capped at half the pool so broader
			// matches always get representation.
			if tierCap := (target + 1) / 2; want > tierCap {
				want = tierCap
			}
		}

		candidates, err := r.fetchTier(ctx, media, genreIDs, tier, seen, want)
		if err != nil {
			if r.log != nil {
				r.log.Warn("tier fetch failed, continuing",
					"tier", tier.priority.String(),
					"media_type", media,
					"error", err,
				)
			}
			continue
		}
		if len(candidates) == 0 {
			continue
		}

		// Fisher-Yates within the tier; tier order itself is fixed.
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		if len(candidates) > want {
			candidates = candidates[:want]
		}

		for _, it := range candidates {
			seen[it.ID] = struct{}{}
		}
		remaining -= len(candidates)

		batches = append(batches, Batch{
			Items:      candidates,
			Priority:   tier.priority,
			Randomized: true,
		})
	}

	return batches
}

// fetchTier pages through the provider until it has enough matching
// candidates, the provider runs dry, or the page budget is spent.
func (r *Ranker) fetchTier(ctx context.Context, media tmdb.MediaType, genreIDs []int, tier tierSpec, exclude map[string]struct{}, want int) ([]tmdb.Item, error) {
	queryGenres := genreIDs
	if tier.mode == tmdb.GenreModeNone {
		queryGenres = nil
	}

	var out []tmdb.Item
	collected := make(map[string]struct{})

	for page := 1; page <= maxTierPages && len(out) < want; page++ {
		items, err := r.src.Discover(ctx, tmdb.DiscoverQuery{
			MediaType:  media,
			GenreIDs:   queryGenres,
			GenreMode:  tier.mode,
			SortBy:     tmdb.SortPopularity,
			Page:       page,
			ExcludeIDs: exclude,
		})
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			break
		}

		for _, it := range items {
			if _, dup := exclude[it.ID]; dup {
				continue
			}
			if _, dup := collected[it.ID]; dup {
				continue
			}
			if !tier.match(it.GenreIDs) {
				continue
			}
			collected[it.ID] = struct{}{}
			out = append(out, it)
		}

		if len(items) < providerPageSize {
			break
		}
	}

	return out, nil
}
