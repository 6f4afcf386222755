package pipeline

import (
	"strings"

	"pointake/internal"
	"pointake/internal/config"
	"pointake/internal/match"
	"pointake/internal/refstore"
	"pointake/internal/util"
)

type PartResolver struct {
	cfg  config.Config
	snap *refstore.Snapshot
}

func NewPartResolver(cfg config.Config, snap *refstore.Snapshot) *PartResolver {
	return &PartResolver{cfg: cfg, snap: snap}
}

type PartResolution struct {
	InternalPartNumber *string
	Status             internal.MappingStatus
	Confidence         int
	Reason             internal.MatchReason
	Candidates         []internal.PartCandidate
}

func (r *PartResolver) Resolve(externalPartNumber, description string) PartResolution {
	if r.snap == nil || r.snap.PartCount() == 0 {
		return PartResolution{Status: internal.StatusNotFound, Reason: internal.ReasonNone}
	}

	if code := util.NormalizeCode(externalPartNumber); code != "" {
		if part, ok := r.snap.PartByCode(code); ok {
			return PartResolution{
				InternalPartNumber: util.StringPtr(part.InternalPartNumber),
				Status:             internal.StatusMapped,
				Confidence:         100,
				Reason:             internal.ReasonExact,
			}
		}
	}

	query := strings.TrimSpace(externalPartNumber + " " + description)
	ranked := match.BestMatches(query, r.snap.PartEntries(), rankDepth)
	if len(ranked) == 0 {
		return PartResolution{Status: internal.StatusNotFound, Reason: internal.ReasonNone}
	}

	top := r.pickTop(ranked, description)
	candidates := r.toCandidates(ranked)

	switch {
	case top.Score >= r.cfg.MappedThreshold:
		return PartResolution{
			InternalPartNumber: util.StringPtr(top.Key),
			Status:             internal.StatusMapped,
			Confidence:         top.Score,
			Reason:             internal.ReasonFuzzy,
		}
	case top.Score >= r.cfg.ReviewThreshold:
		return PartResolution{
			Status:     internal.StatusManualReview,
			Confidence: top.Score,
			Reason:     internal.ReasonFuzzy,
			Candidates: candidates,
		}
	default:
		return PartResolution{
			Status:     internal.StatusNotFound,
			Confidence: top.Score,
			Reason:     internal.ReasonNone,
			Candidates: candidates,
		}
	}
}

func (r *PartResolver) pickTop(ranked []match.Candidate, description string) match.Candidate {
	top := ranked[0]
	if len(ranked) == 1 || ranked[1].Score != top.Score {
		return top
	}

	inputTokens := tokenSet(description)
	best := top
	bestOverlap := r.descriptionOverlap(best.Key, inputTokens)
	for _, c := range ranked[1:] {
		if c.Score != top.Score {
			break
		}
		overlap := r.descriptionOverlap(c.Key, inputTokens)
		if overlap > bestOverlap || (overlap == bestOverlap && c.Key < best.Key) {
			best = c
			bestOverlap = overlap
		}
	}
	return best
}

func (r *PartResolver) descriptionOverlap(partNumber string, inputTokens map[string]struct{}) int {
	if len(inputTokens) == 0 {
		return 0
	}
	part, ok := r.snap.PartByNumber(partNumber)
	if !ok {
		return 0
	}
	seen := map[string]struct{}{}
	overlap := 0
	for _, t := range util.Tokenize(part.Description) {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := inputTokens[t]; ok {
			overlap++
		}
	}
	return overlap
}

func (r *PartResolver) toCandidates(ranked []match.Candidate) []internal.PartCandidate {
	limit := r.cfg.CandidateLimit
	if limit <= 0 {
		limit = 3
	}
	out := make([]internal.PartCandidate, 0, limit)
	for _, c := range ranked {
		if c.Score < r.cfg.ReviewThreshold {
			continue
		}
		description := ""
		if part, ok := r.snap.PartByNumber(c.Key); ok {
			description = part.Description
		}
		out = append(out, internal.PartCandidate{
			InternalPartNumber: c.Key,
			Description:        description,
			Confidence:         c.Score,
		})
		if len(out) >= limit {
			break
		}
	}
	return out
}

func tokenSet(input string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, t := range util.Tokenize(input) {
		set[t] = struct{}{}
	}
	return set
}

const rankDepth = 10
