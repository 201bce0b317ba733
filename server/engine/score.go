package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Result is the duplicate score of one deal. HasWinner is false only for
// a passed-out deal.
type Result struct {
	Winner    Side `json:"winner"`
	HasWinner bool `json:"has_winner"`
	Points    int  `json:"points"`
}

// Relative signs Points against ReferenceSide.
func (r Result) Relative() int {
	if !r.HasWinner || r.Winner == ReferenceSide {
		return r.Points
	}
	return -r.Points
}

// String renders the record form, e.g. "NS 420" or "NS -100".
func (r Result) String() string {
	return ReferenceSide.String() + " " + strconv.Itoa(r.Relative())
}

// undertrick schedules for doubled contracts; the last entry repeats.
var (
	doubledDownNonVul = []int{100, 200, 200, 300}
	doubledDownVul    = []int{200, 300, 300, 300}
)

// trickValue is the undoubled value of the first level tricks.
func trickValue(c Contract) int {
	switch {
	case c.Denom == NoTrump:
		return 40 + 30*(c.Level-1)
	case c.Denom.Major():
		return 30 * c.Level
	}
	return 20 * c.Level
}

// perTrick is the undoubled value of one overtrick.
func perTrick(d Denomination) int {
	if d == NoTrump || d.Major() {
		return 30
	}
	return 20
}

// Score computes the duplicate score for tricks taken by declarer's
// side. A trick count outside 0..13 is a caller bug and panics.
func Score(c Contract, declarer Seat, tricks int, vul Vulnerability) Result {
	if tricks < 0 || tricks > 13 {
		panic(fmt.Sprintf("engine: score called with %d tricks", tricks))
	}
	if c.PassedOut() {
		return Result{}
	}
	side := declarer.Side()
	vulnerable := vul.Includes(side)
	diff := tricks - c.TricksNeeded()

	if diff < 0 {
		return Result{Winner: side.Opponent(), HasWinner: true, Points: penalty(c.Risk, -diff, vulnerable)}
	}

	base := trickValue(c)
	total := base
	switch c.Risk {
	case Doubled:
		total = base*2 + 50
	case Redoubled:
		total = base*4 + 100
	}

	if base >= 100 {
		if vulnerable {
			total += 500
		} else {
			total += 300
		}
	} else {
		total += 50
	}

	switch c.Level {
	case 6:
		total += pick(vulnerable, 750, 500)
	case 7:
		total += pick(vulnerable, 1500, 1000)
	}

	over := perTrick(c.Denom)
	switch c.Risk {
	case Doubled:
		over = pick(vulnerable, 200, 100)
	case Redoubled:
		over = pick(vulnerable, 400, 200)
	}
	total += over * diff

	return Result{Winner: side, HasWinner: true, Points: total}
}

func penalty(risk Risk, down int, vulnerable bool) int {
	if risk == Undoubled {
		return down * pick(vulnerable, 100, 50)
	}
	steps := doubledDownNonVul
	if vulnerable {
		steps = doubledDownVul
	}
	total := 0
	for i := 0; i < down; i++ {
		total += steps[min(i, len(steps)-1)]
	}
	if risk == Redoubled {
		total *= 2
	}
	return total
}

func pick(vulnerable bool, vul, nonVul int) int {
	if vulnerable {
		return vul
	}
	return nonVul
}

// ParseContract reads the record form produced by Contract.String.
func ParseContract(v string) (Contract, error) {
	v = strings.TrimSpace(v)
	if v == "Pass" || v == "" {
		return Contract{}, nil
	}
	var risk Risk
	switch {
	case strings.HasSuffix(v, "XX"):
		risk, v = Redoubled, strings.TrimSuffix(v, "XX")
	case strings.HasSuffix(v, "X"):
		risk, v = Doubled, strings.TrimSuffix(v, "X")
	}
	call, err := ParseCall(v)
	if err != nil || !call.IsBid() {
		return Contract{}, fmt.Errorf("bad contract %q", v)
	}
	return Contract{Level: call.Level, Denom: call.Denom, Risk: risk}, nil
}
