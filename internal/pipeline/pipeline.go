// Package pipeline orchestrates one full aggregation run for a user:
// fetch listings from every configured source, deduplicate, match against
// the user's profile, persist the resulting recommendation set and send a
// digest email. Adapter and embedding failures degrade silently; only
// persistence failures abort a run, and only for that user.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/nexora/opportunity-agent/internal/db"
	"github.com/nexora/opportunity-agent/internal/dedupe"
	"github.com/nexora/opportunity-agent/internal/email"
	"github.com/nexora/opportunity-agent/internal/matching"
	"github.com/nexora/opportunity-agent/internal/sources"
	"github.com/nexora/opportunity-agent/internal/types"
)

// maxQueryKeywords caps how many profile skills seed the search query.
const maxQueryKeywords = 3

// Store is the persistence surface the pipeline needs. *db.DB satisfies it.
type Store interface {
	GetUser(ctx context.Context, id uuid.UUID) (*types.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
	GetPreferences(ctx context.Context, userID uuid.UUID) (*types.UserPreferences, error)
	TryStartRun(ctx context.Context, userID uuid.UUID) (uuid.UUID, bool, error)
	CompleteRun(ctx context.Context, runID uuid.UUID, status string, fetched, matched int, runErr error) error
	UpsertOpportunities(ctx context.Context, opps []types.Opportunity) error
	ReplaceRecommendations(ctx context.Context, userID uuid.UUID, recs []types.Recommendation) error
}

// Fetcher produces raw listings for a query. *sources.Orchestrator
// satisfies it.
type Fetcher interface {
	FetchAll(ctx context.Context, q sources.Query) ([]types.RawListing, *sources.Stats, error)
}

// Options configures a Pipeline.
type Options struct {
	LimitPerSource int
	Scorer         dedupe.CompletenessScorer
	Mailer         email.Mailer // nil disables digests
}

// Result summarizes one run.
type Result struct {
	RunID   uuid.UUID
	Skipped bool // no profile, or a run was already in flight
	Fetched int
	Deduped int
	Matched int
	Emailed bool
}

// Pipeline runs the fetch, dedupe, match, persist, notify sequence.
type Pipeline struct {
	store   Store
	fetcher Fetcher
	engine  *matching.Engine
	opts    Options
}

// New creates a pipeline.
func New(store Store, fetcher Fetcher, engine *matching.Engine, opts Options) *Pipeline {
	if opts.LimitPerSource <= 0 {
		opts.LimitPerSource = 20
	}
	if opts.Scorer == nil {
		opts.Scorer = dedupe.FieldCountScorer
	}
	return &Pipeline{store: store, fetcher: fetcher, engine: engine, opts: opts}
}

// RunForUser executes one full run for a user. It returns an error only
// when persistence fails or the context is cancelled; a missing profile or
// an already in-flight run yields a skipped result instead.
func (p *Pipeline) RunForUser(ctx context.Context, userID uuid.UUID) (*Result, error) {
	profile, err := p.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile for %s: %w", userID, err)
	}
	if profile == nil {
		log.Printf("[pipeline] user %s has no profile, skipping run", userID)
		return &Result{Skipped: true}, nil
	}

	runID, started, err := p.store.TryStartRun(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to start run for %s: %w", userID, err)
	}
	if !started {
		log.Printf("[pipeline] run already in flight for user %s, skipping", userID)
		return &Result{Skipped: true}, nil
	}

	result, err := p.execute(ctx, runID, profile)
	if err != nil {
		if completeErr := p.store.CompleteRun(ctx, runID, db.RunStatusFailed, 0, 0, err); completeErr != nil {
			log.Printf("[pipeline] failed to record failed run %s: %v", runID, completeErr)
		}
		return nil, err
	}

	if err := p.store.CompleteRun(ctx, runID, db.RunStatusCompleted, result.Fetched, result.Matched, nil); err != nil {
		return nil, fmt.Errorf("failed to complete run %s: %w", runID, err)
	}
	return result, nil
}

func (p *Pipeline) execute(ctx context.Context, runID uuid.UUID, profile *types.UserProfile) (*Result, error) {
	result := &Result{RunID: runID}

	query := queryFromProfile(profile, p.opts.LimitPerSource)
	listings, stats, err := p.fetcher.FetchAll(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch aborted: %w", err)
	}
	result.Fetched = len(listings)
	log.Printf("[pipeline] run %s fetched %d listings (%d sources ok, %d failed, %d cached)",
		runID, len(listings), stats.Succeeded, stats.Failed, stats.FromCache)

	opportunities := dedupe.Normalize(listings, p.opts.Scorer)
	opportunities = filterByJobTypes(opportunities, profile.PreferredJobTypes)
	result.Deduped = len(opportunities)

	if err := p.store.UpsertOpportunities(ctx, opportunities); err != nil {
		return nil, fmt.Errorf("failed to persist opportunities: %w", err)
	}

	ranked, err := p.engine.Match(ctx, *profile, opportunities)
	if err != nil {
		return nil, fmt.Errorf("matching aborted: %w", err)
	}

	prefs, err := p.store.GetPreferences(ctx, profile.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences for %s: %w", profile.UserID, err)
	}
	ranked = applyPreferences(ranked, prefs)

	recs := toRecommendations(profile.UserID, ranked)
	result.Matched = len(recs)
	if err := p.store.ReplaceRecommendations(ctx, profile.UserID, recs); err != nil {
		return nil, fmt.Errorf("failed to persist recommendations: %w", err)
	}

	result.Emailed = p.notify(ctx, profile.UserID, prefs, ranked)
	return result, nil
}

// notify sends the digest email. Failures are logged, never propagated.
func (p *Pipeline) notify(ctx context.Context, userID uuid.UUID, prefs *types.UserPreferences, ranked *types.RankedMatches) bool {
	if p.opts.Mailer == nil || !prefs.EmailNotifications || len(ranked.BestMatches) == 0 {
		return false
	}

	user, err := p.store.GetUser(ctx, userID)
	if err != nil || user == nil {
		log.Printf("[pipeline] cannot send digest, failed to load user %s: %v", userID, err)
		return false
	}

	if err := p.opts.Mailer.SendDigest(ctx, user.Email, user.Name, ranked); err != nil {
		log.Printf("[pipeline] digest to %s failed: %v", user.Email, err)
		return false
	}
	return true
}

// queryFromProfile seeds the search query from the user's top skills and
// first preferred location. Remote-preferring users search without a
// location constraint.
func queryFromProfile(profile *types.UserProfile, limit int) sources.Query {
	keywords := profile.Skills
	if len(keywords) > maxQueryKeywords {
		keywords = keywords[:maxQueryKeywords]
	}

	location := ""
	if !profile.RemotePreference && len(profile.PreferredLocations) > 0 {
		location = profile.PreferredLocations[0]
	}

	return sources.Query{
		Keywords: strings.Join(keywords, " "),
		Location: location,
		Limit:    limit,
	}
}

// filterByJobTypes drops opportunities whose type the user excluded. An
// empty preference list keeps everything.
func filterByJobTypes(opps []types.Opportunity, preferred []string) []types.Opportunity {
	if len(preferred) == 0 {
		return opps
	}
	allowed := make(map[types.OpportunityType]bool, len(preferred))
	for _, t := range preferred {
		allowed[types.OpportunityType(t)] = true
	}

	out := opps[:0]
	for _, opp := range opps {
		if allowed[opp.Type] {
			out = append(out, opp)
		}
	}
	return out
}

// applyPreferences enforces the user's score floor and result cap while
// preserving the best/other partition and ranked order.
func applyPreferences(ranked *types.RankedMatches, prefs *types.UserPreferences) *types.RankedMatches {
	out := &types.RankedMatches{Degraded: ranked.Degraded}
	remaining := prefs.MaxResults
	if remaining <= 0 {
		remaining = len(ranked.BestMatches) + len(ranked.OtherSuggestions)
	}

	for _, m := range ranked.BestMatches {
		if remaining == 0 {
			break
		}
		if m.Score >= prefs.MinMatchScore {
			out.BestMatches = append(out.BestMatches, m)
			remaining--
		}
	}
	for _, m := range ranked.OtherSuggestions {
		if remaining == 0 {
			break
		}
		if m.Score >= prefs.MinMatchScore {
			out.OtherSuggestions = append(out.OtherSuggestions, m)
			remaining--
		}
	}
	return out
}

func toRecommendations(userID uuid.UUID, ranked *types.RankedMatches) []types.Recommendation {
	matches := ranked.All()
	recs := make([]types.Recommendation, 0, len(matches))
	for _, m := range matches {
		recs = append(recs, types.Recommendation{
			UserID:        userID,
			OpportunityID: m.Opportunity.ID,
			Type:          m.Opportunity.Type,
			Score:         m.Score,
			MatchedSkills: m.MatchedSkills,
			Reasoning:     m.Reasoning,
		})
	}
	return recs
}
