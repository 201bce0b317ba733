// Package replay drives recorded boards through the engine and compares
// what the engine computes with what the record claims.
package replay

import (
	"fmt"

	"bridgebench/server/engine"
	"bridgebench/server/record"
)

// Failure kinds reported in Outcome.Errors.
const (
	KindMissingTag        = "missing_tag"
	KindSetup             = "setup"
	KindAuction           = "auction"
	KindAuctionIncomplete = "auction_incomplete"
	KindPlay              = "play"
	KindPlayIncomplete    = "play_incomplete"
	KindDeclarer          = "declarer_mismatch"
	KindContract          = "contract_mismatch"
	KindResult            = "result_mismatch"
	KindScore             = "score_mismatch"
)

type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (f Failure) String() string { return f.Kind + ": " + f.Message }

// Outcome is the verdict for one board.
type Outcome struct {
	File     string          `json:"file"`
	Index    int             `json:"index"`
	Expected record.Expected `json:"expected"`

	Declarer     string    `json:"declarer"`
	Contract     string    `json:"contract"`
	Result       *int      `json:"result,omitempty"`
	Score        string    `json:"score,omitempty"`
	TricksPlayed int       `json:"tricks_played"`
	Errors       []Failure `json:"errors,omitempty"`

	// which record tags were compared
	checked struct{ declarer, contract, result, score bool }
}

func (o Outcome) OK() bool { return len(o.Errors) == 0 }

func (o *Outcome) fail(kind, format string, args ...any) {
	o.Errors = append(o.Errors, Failure{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

var required = []string{record.TagVulnerable, record.TagDealer, record.TagDeal, record.TagAuction}

// Board replays one recorded board.
func Board(b record.Board) Outcome {
	out := Outcome{File: b.File, Index: b.Index, Expected: b.Expected()}

	var missing []string
	for _, name := range required {
		if !b.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		out.fail(KindMissingTag, "missing %v", missing)
		return out
	}

	setup, err := b.Setup()
	if err != nil {
		out.fail(KindSetup, "%v", err)
		return out
	}
	g, err := engine.Replay(setup...)
	if err != nil {
		out.fail(KindSetup, "%v", err)
		return out
	}

	calls, err := b.Calls()
	if err != nil {
		out.fail(KindAuction, "%v", err)
		return out
	}
	for i, a := range calls {
		if err := g.Apply(a); err != nil {
			out.fail(KindAuction, "call %d (%s): %v", i, a.(engine.MakeCall).Call, err)
			return out
		}
	}
	if g.Phase() == engine.PhaseSetup || g.Phase() == engine.PhaseAuction {
		out.fail(KindAuctionIncomplete, "auction not finished after %d calls", len(calls))
		return out
	}

	rec := g.Record()
	out.Contract = rec.Contract.String()
	if rec.HasDeclarer {
		out.Declarer = rec.Declarer.String()
	}
	if b.Has(record.TagDeclarer) {
		out.checked.declarer = true
		if out.Declarer != out.Expected.Declarer {
			out.fail(KindDeclarer, "expected %q, got %q", out.Expected.Declarer, out.Declarer)
		}
	}
	if b.Has(record.TagContract) {
		out.checked.contract = true
		if !sameContract(out.Expected.Contract, rec.Contract) {
			out.fail(KindContract, "expected %q, got %q", out.Expected.Contract, out.Contract)
		}
	}

	if g.Phase() == engine.PhaseFinished {
		// passed out: nobody declares, so a recorded trick count must be 0
		out.Score = rec.Score.String()
		if e := out.Expected.Result; e != nil {
			out.checked.result = true
			if *e != 0 {
				out.fail(KindResult, "expected %d on a passed out deal", *e)
			}
		}
		out.checkScore(b)
		return out
	}
	if !b.Has(record.TagPlay) {
		return out
	}
	if err := play(g, b); err != nil {
		out.fail(KindPlay, "%v", err)
	}

	rec = g.Record()
	out.TricksPlayed = len(rec.Tricks)
	if g.Phase() != engine.PhaseFinished {
		out.fail(KindPlayIncomplete, "%d of 13 tricks played", out.TricksPlayed)
		return out
	}
	n := rec.DeclarerTricks
	out.Result = &n
	out.Score = rec.Score.String()
	if b.Has(record.TagResult) {
		out.checked.result = true
		if e := out.Expected.Result; e == nil || *e != n {
			out.fail(KindResult, "expected %s, got %d", b.Tags[record.TagResult].Value, n)
		}
	}
	out.checkScore(b)
	return out
}

func (o *Outcome) checkScore(b record.Board) {
	if !b.Has(record.TagScore) {
		return
	}
	o.checked.score = true
	if o.Expected.Score != o.Score {
		o.fail(KindScore, "expected %q, got %q", o.Expected.Score, o.Score)
	}
}

// sameContract compares a recorded contract with the engine's, treating
// an empty or unparseable record value as a mismatch.
func sameContract(want string, got engine.Contract) bool {
	c, err := engine.ParseContract(want)
	if err != nil {
		return false
	}
	return c == got
}

// play submits each row's cards in the game's turn order. A row that is
// short or holds a "no card" marker ends the play.
func play(g *engine.Game, b record.Board) error {
	rows, err := b.PlayRows()
	if err != nil {
		return err
	}
	for r, row := range rows {
		used := make([]bool, len(row))
		for range row {
			if g.Phase() != engine.PhasePlay {
				return fmt.Errorf("trick %d: play continues after the last trick", r+1)
			}
			seat, _ := g.ToAct()
			i := find(row, used, seat)
			if i < 0 {
				return nil
			}
			used[i] = true
			if row[i].Card == engine.NoCard {
				return nil
			}
			if err := g.Apply(row[i]); err != nil {
				return fmt.Errorf("trick %d, %s plays %s: %w", r+1, seat, row[i].Card, err)
			}
		}
	}
	return nil
}

func find(row []engine.PlayCard, used []bool, seat engine.Seat) int {
	for i, p := range row {
		if !used[i] && p.Seat == seat {
			return i
		}
	}
	return -1
}
