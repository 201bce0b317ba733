package replay

import (
	"fmt"
	"io"
	"sort"
)

// Stats tallies outcomes across a run. Each Matches count is out of the
// matching Checks count: boards whose record carried that tag.
type Stats struct {
	Boards          int
	Passed          int
	Played          int // boards with all 13 tricks replayed
	DeclarerChecks  int
	DeclarerMatches int
	ContractChecks  int
	ContractMatches int
	ResultChecks    int
	ResultMatches   int
	ScoreChecks     int
	ScoreMatches    int
	Kinds           map[string]int
	Failed          []Outcome
}

func NewStats() *Stats { return &Stats{Kinds: map[string]int{}} }

func (s *Stats) Add(o Outcome) {
	s.Boards++
	if o.OK() {
		s.Passed++
	} else {
		s.Failed = append(s.Failed, o)
	}
	bad := map[string]bool{}
	for _, f := range o.Errors {
		s.Kinds[f.Kind]++
		bad[f.Kind] = true
	}
	if o.Result != nil {
		s.Played++
	}
	tally(o.checked.declarer, bad[KindDeclarer], &s.DeclarerChecks, &s.DeclarerMatches)
	tally(o.checked.contract, bad[KindContract], &s.ContractChecks, &s.ContractMatches)
	tally(o.checked.result, bad[KindResult], &s.ResultChecks, &s.ResultMatches)
	tally(o.checked.score, bad[KindScore], &s.ScoreChecks, &s.ScoreMatches)
}

func tally(checked, mismatch bool, checks, matches *int) {
	if !checked {
		return
	}
	*checks++
	if !mismatch {
		*matches++
	}
}

func (s *Stats) Failures() int { return s.Boards - s.Passed }

func pct(n, d int) float64 {
	if d <= 0 {
		return 0
	}
	return 100 * float64(n) / float64(d)
}

func (s *Stats) PassRate() float64 { return pct(s.Passed, s.Boards) }

// WriteSummary prints the totals, the error breakdown and up to
// maxFailures failing boards (all of them when maxFailures < 0).
func (s *Stats) WriteSummary(w io.Writer, maxFailures int) {
	fmt.Fprintf(w, "boards:    %d\n", s.Boards)
	fmt.Fprintf(w, "passed:    %d (%.1f%%)\n", s.Passed, s.PassRate())
	fmt.Fprintf(w, "failed:    %d\n", s.Failures())
	fmt.Fprintf(w, "played:    %d\n", s.Played)
	fmt.Fprintf(w, "declarer:  %d of %d (%.1f%%)\n", s.DeclarerMatches, s.DeclarerChecks, pct(s.DeclarerMatches, s.DeclarerChecks))
	fmt.Fprintf(w, "contract:  %d of %d (%.1f%%)\n", s.ContractMatches, s.ContractChecks, pct(s.ContractMatches, s.ContractChecks))
	fmt.Fprintf(w, "result:    %d of %d (%.1f%%)\n", s.ResultMatches, s.ResultChecks, pct(s.ResultMatches, s.ResultChecks))
	fmt.Fprintf(w, "score:     %d of %d (%.1f%%)\n", s.ScoreMatches, s.ScoreChecks, pct(s.ScoreMatches, s.ScoreChecks))

	if len(s.Kinds) > 0 {
		kinds := make([]string, 0, len(s.Kinds))
		for k := range s.Kinds {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool {
			if s.Kinds[kinds[i]] != s.Kinds[kinds[j]] {
				return s.Kinds[kinds[i]] > s.Kinds[kinds[j]]
			}
			return kinds[i] < kinds[j]
		})
		fmt.Fprintln(w, "errors:")
		for _, k := range kinds {
			fmt.Fprintf(w, "  %-20s %d\n", k, s.Kinds[k])
		}
	}

	for i, o := range s.Failed {
		if maxFailures >= 0 && i >= maxFailures {
			fmt.Fprintf(w, "... %d more\n", len(s.Failed)-i)
			break
		}
		fmt.Fprintf(w, "%s #%d:\n", o.File, o.Index)
		for _, f := range o.Errors {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
}
