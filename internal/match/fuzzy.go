package match

import (
	"math"
	"sort"

	"github.com/agnivade/levenshtein"

	"pointake/internal/util"
)

const (
	editWeight  = 0.6
	tokenWeight = 0.4
)

type Entry struct {
	Key  string
	Text string
}

type Candidate struct {
	Key   string
	Text  string
	Score int
}

func Score(a, b string) int {
	na := util.NormalizeText(a)
	nb := util.NormalizeText(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 100
	}

	blended := editWeight*editRatio(na, nb) + tokenWeight*tokenOverlap(na, nb)
	score := int(math.Round(blended * 100))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func BestMatches(query string, candidates []Entry, limit int) []Candidate {
	if util.NormalizeText(query) == "" || len(candidates) == 0 {
		return nil
	}

	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Candidate{Key: c.Key, Text: c.Text, Score: Score(query, c.Text)})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if len(out[i].Text) != len(out[j].Text) {
			return len(out[i].Text) < len(out[j].Text)
		}
		return out[i].Key < out[j].Key
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func editRatio(a, b string) float64 {
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

func tokenOverlap(a, b string) float64 {
	aTokens := util.Tokenize(a)
	bTokens := util.Tokenize(b)
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0
	}

	set := map[string]struct{}{}
	for _, t := range aTokens {
		set[t] = struct{}{}
	}
	union := map[string]struct{}{}
	for _, t := range aTokens {
		union[t] = struct{}{}
	}
	inter := 0
	for _, t := range bTokens {
		if _, ok := union[t]; !ok {
			union[t] = struct{}{}
		}
		if _, ok := set[t]; ok {
			inter++
			delete(set, t)
		}
	}
	return float64(inter) / float64(len(union))
}
