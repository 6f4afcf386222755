package pipeline

import (
	"sort"
	"strings"

	"pointake/internal"
	"pointake/internal/config"
	"pointake/internal/match"
	"pointake/internal/refstore"
	"pointake/internal/util"
)

type CustomerResolver struct {
	cfg  config.Config
	snap *refstore.Snapshot
}

func NewCustomerResolver(cfg config.Config, snap *refstore.Snapshot) *CustomerResolver {
	return &CustomerResolver{cfg: cfg, snap: snap}
}

type CustomerResolution struct {
	AccountNumber *string
	Status        internal.CustomerMatchStatus
	Confidence    int
	Reason        internal.MatchReason
}

func (r *CustomerResolver) Resolve(companyName, address string) CustomerResolution {
	normalized := util.NormalizeText(companyName)
	if normalized == "" || r.snap == nil || r.snap.CustomerCount() == 0 {
		return CustomerResolution{Status: internal.CustomerNotFound, Reason: internal.ReasonNone}
	}

	for _, marker := range r.cfg.SupplierMarkers {
		if strings.Contains(normalized, marker) {
			return CustomerResolution{Status: internal.CustomerNotFound, Reason: internal.ReasonNone}
		}
	}

	if exact := r.snap.CustomersByName(normalized); len(exact) > 0 {
		best := exact[0]
		for _, c := range exact[1:] {
			if c.AccountNumber < best.AccountNumber {
				best = c
			}
		}
		return CustomerResolution{
			AccountNumber: util.StringPtr(best.AccountNumber),
			Status:        internal.CustomerMatched,
			Confidence:    100,
			Reason:        internal.ReasonExact,
		}
	}

	ranked := match.BestMatches(companyName, r.snap.CustomerEntries(), rankDepth)
	if len(ranked) == 0 {
		return CustomerResolution{Status: internal.CustomerNotFound, Reason: internal.ReasonNone}
	}

	if address != "" {
		ranked = r.applyAddressBonus(ranked, address)
	}

	top := ranked[0]
	switch {
	case top.Score >= r.cfg.MappedThreshold:
		return CustomerResolution{
			AccountNumber: util.StringPtr(top.Key),
			Status:        internal.CustomerMatched,
			Confidence:    top.Score,
			Reason:        internal.ReasonFuzzy,
		}
	case top.Score >= r.cfg.ReviewThreshold:
		return CustomerResolution{
			AccountNumber: util.StringPtr(top.Key),
			Status:        internal.CustomerManualReview,
			Confidence:    top.Score,
			Reason:        internal.ReasonFuzzy,
		}
	default:
		return CustomerResolution{
			Status:     internal.CustomerNotFound,
			Confidence: top.Score,
			Reason:     internal.ReasonNone,
		}
	}
}

func (r *CustomerResolver) applyAddressBonus(ranked []match.Candidate, address string) []match.Candidate {
	addrNorm := " " + util.NormalizeText(address) + " "

	out := make([]match.Candidate, len(ranked))
	copy(out, ranked)
	for i, c := range out {
		customer, ok := r.snap.CustomerByAccount(c.Key)
		if !ok {
			continue
		}
		if !addressOverlaps(addrNorm, customer) {
			continue
		}
		c.Score += r.cfg.AddressBonus
		if c.Score > 100 {
			c.Score = 100
		}
		out[i] = c
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if len(out[i].Text) != len(out[j].Text) {
			return len(out[i].Text) < len(out[j].Text)
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func addressOverlaps(addrNorm string, customer internal.Customer) bool {
	if city := util.NormalizeText(customer.City); city != "" {
		if strings.Contains(addrNorm, " "+city+" ") {
			return true
		}
	}
	if state := util.NormalizeText(customer.State); state != "" {
		if strings.Contains(addrNorm, " "+state+" ") {
			return true
		}
	}
	return false
}
