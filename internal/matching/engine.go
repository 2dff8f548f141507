package matching

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"reconcile-backend/internal/roles"
)

// Classification is the reviewer-facing verdict for one extracted role.
type Classification string

const (
	// AutoMatch pairs are confident enough to pre-approve for commit.
	AutoMatch Classification = "AUTO_MATCH"
	// CandidateMatch pairs need a human decision.
	CandidateMatch Classification = "CANDIDATE_MATCH"
	// New roles have no plausible counterpart in the record store.
	New Classification = "NEW"
)

const (
	autoMatchThreshold = 0.85
	candidateThreshold = 0.5

	orgWeight   = 0.4
	titleWeight = 0.3
	dateWeight  = 0.3
)

// Candidate pairs an extracted role with its best existing record, if any.
// ExistingID is empty for NEW classifications.
type Candidate struct {
	ID             string              `json:"id"`
	ExtractedIndex int                 `json:"extractedIndex"`
	Extracted      roles.ExtractedRole `json:"extracted"`
	ExistingID     string              `json:"existingId,omitempty"`
	Score          float64             `json:"score"`
	Classification Classification      `json:"classification"`
}

// Score computes the weighted similarity between an extracted role and a
// stored record: company tokens 0.4, title tokens 0.3, date overlap 0.3.
func Score(extracted roles.ExtractedRole, existing roles.StoredRole) float64 {
	org := jaccard(orgTokens(extracted.Company), orgTokens(existing.Company))
	title := jaccard(titleTokens(extracted.Title), titleTokens(existing.Title))
	dates := dateOverlap(extracted.StartDate, extracted.EndDate, existing.StartDate, existing.EndDate)
	return orgWeight*org + titleWeight*title + dateWeight*dates
}

type scoredPair struct {
	extractedIdx int
	existingIdx  int
	score        float64
}

// Match scores every extracted role against every existing record and
// assigns each role to at most one record, best scores first. Each existing
// record is claimed by at most one role. The result is ordered by extracted
// index and is deterministic for a given input regardless of input ordering
// of the existing records.
func Match(ctx context.Context, extracted []roles.ExtractedRole, existing []roles.StoredRole) ([]Candidate, error) {
	scores := make([][]float64, len(extracted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range extracted {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row := make([]float64, len(existing))
			for j := range existing {
				row[j] = Score(extracted[i], existing[j])
			}
			scores[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pairs := make([]scoredPair, 0, len(extracted)*len(existing))
	for i := range extracted {
		for j := range existing {
			if scores[i][j] >= candidateThreshold {
				pairs = append(pairs, scoredPair{extractedIdx: i, existingIdx: j, score: scores[i][j]})
			}
		}
	}
	sort.Slice(pairs, func(a, b int) bool {
		pa, pb := pairs[a], pairs[b]
		if pa.score != pb.score {
			return pa.score > pb.score
		}
		ra, rb := existing[pa.existingIdx], existing[pb.existingIdx]
		if ra.LastModified != rb.LastModified {
			return ra.LastModified > rb.LastModified
		}
		if ra.ID != rb.ID {
			return ra.ID < rb.ID
		}
		return pa.extractedIdx < pb.extractedIdx
	})

	claimedExtracted := make([]bool, len(extracted))
	claimedExisting := make([]bool, len(existing))
	assigned := make([]scoredPair, len(extracted))
	for i := range assigned {
		assigned[i] = scoredPair{existingIdx: -1}
	}
	for _, p := range pairs {
		if claimedExtracted[p.extractedIdx] || claimedExisting[p.existingIdx] {
			continue
		}
		claimedExtracted[p.extractedIdx] = true
		claimedExisting[p.existingIdx] = true
		assigned[p.extractedIdx] = p
	}

	candidates := make([]Candidate, len(extracted))
	for i := range extracted {
		cand := Candidate{
			ID:             fmt.Sprintf("cand-%03d", i),
			ExtractedIndex: i,
			Extracted:      extracted[i],
			Classification: New,
		}
		if p := assigned[i]; p.existingIdx >= 0 {
			cand.ExistingID = existing[p.existingIdx].ID
			cand.Score = p.score
			if p.score >= autoMatchThreshold {
				cand.Classification = AutoMatch
			} else {
				cand.Classification = CandidateMatch
			}
		}
		candidates[i] = cand
	}
	return candidates, nil
}
