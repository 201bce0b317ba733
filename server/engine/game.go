package engine

import "fmt"

type Phase int

const (
	PhaseSetup Phase = iota
	PhaseAuction
	PhasePlay
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseAuction:
		return "auction"
	case PhasePlay:
		return "play"
	case PhaseFinished:
		return "finished"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Action is the closed set of inputs a Game accepts.
type Action interface{ action() }

type SetVulnerability struct{ Value Vulnerability }

type SetDealer struct{ Value Seat }

// DealtCard assigns one card to a seat.
type DealtCard struct {
	Seat Seat `json:"seat"`
	Card Card `json:"card"`
}

// DealHands must list each of the 52 cards exactly once, 13 per seat.
type DealHands struct{ Cards []DealtCard }

type MakeCall struct {
	Seat Seat
	Call Call
}

// PlayCard with NoCard is the record's end-of-play marker and is ignored.
type PlayCard struct {
	Seat Seat
	Card Card
}

func (SetVulnerability) action() {}
func (SetDealer) action()        {}
func (DealHands) action()        {}
func (MakeCall) action()         {}
func (PlayCard) action()         {}

// TrickResult is a completed trick.
type TrickResult struct {
	Leader Seat   `json:"leader"`
	Plays  []Play `json:"plays"`
	Winner Seat   `json:"winner"`
}

// DealRecord is the per-deal history. It holds at most one contract, one
// declarer, 13 tricks and one score.
type DealRecord struct {
	Vulnerability  Vulnerability `json:"vulnerability"`
	Dealer         Seat          `json:"dealer"`
	Calls          []AuctionCall `json:"calls"`
	Contract       Contract      `json:"contract"`
	Declarer       Seat          `json:"declarer"`
	HasDeclarer    bool          `json:"has_declarer"`
	Tricks         []TrickResult `json:"tricks"`
	DeclarerTricks int           `json:"declarer_tricks"`
	Score          Result        `json:"score"`
	Scored         bool          `json:"scored"`
}

// Game is the state machine for a single deal. It is not safe for
// concurrent use; replay one Game per deal.
type Game struct {
	phase Phase

	vul       Vulnerability
	vulSet    bool
	dealer    Seat
	dealerSet bool
	hands     Hands
	dealt     bool

	auction *Auction
	trick   *Trick
	record  DealRecord
}

func NewGame() *Game {
	return &Game{phase: PhaseSetup}
}

// Replay applies actions in order and stops at the first rejected one,
// reporting its index.
func Replay(actions ...Action) (*Game, error) {
	g := NewGame()
	for i, a := range actions {
		if err := g.Apply(a); err != nil {
			return g, fmt.Errorf("action %d: %w", i, err)
		}
	}
	return g, nil
}

func (g *Game) Phase() Phase { return g.phase }

// Hands returns a copy of the unplayed cards.
func (g *Game) Hands() Hands { return g.hands.Clone() }

// Auction is nil until the first call is accepted.
func (g *Game) Auction() *Auction { return g.auction }

// CurrentTrick is nil outside the play phase.
func (g *Game) CurrentTrick() *Trick { return g.trick }

// Record returns a snapshot of the deal history.
func (g *Game) Record() DealRecord {
	r := g.record
	if g.auction != nil {
		r.Calls = g.auction.Calls()
	}
	r.Tricks = append([]TrickResult(nil), g.record.Tricks...)
	return r
}

// ToAct returns the seat expected to act next during the auction or play.
func (g *Game) ToAct() (Seat, bool) {
	switch g.phase {
	case PhaseAuction:
		return g.auction.Turn(), true
	case PhasePlay:
		return g.trick.NextPlayer(), true
	case PhaseSetup:
		if g.ready() {
			return g.dealer, true
		}
	}
	return 0, false
}

// LegalCalls lists the calls open to the seat to act.
func (g *Game) LegalCalls() []Call {
	switch g.phase {
	case PhaseSetup:
		if g.ready() {
			return NewAuction(g.dealer).LegalCalls()
		}
	case PhaseAuction:
		return g.auction.LegalCalls()
	}
	return nil
}

// LegalPlays lists the cards the seat to act may play.
func (g *Game) LegalPlays() []Card {
	if g.phase != PhasePlay {
		return nil
	}
	return g.trick.LegalPlays(g.trick.NextPlayer(), &g.hands)
}

func (g *Game) ready() bool { return g.vulSet && g.dealerSet && g.dealt }

// Apply validates and performs one action. On error the game is left
// exactly as it was.
func (g *Game) Apply(a Action) error {
	switch a := a.(type) {
	case SetVulnerability:
		return g.setVulnerability(a)
	case SetDealer:
		return g.setDealer(a)
	case DealHands:
		return g.dealHands(a)
	case MakeCall:
		return g.makeCall(a)
	case PlayCard:
		return g.playCard(a)
	case nil:
		return fmt.Errorf("%w: nil action", ErrPhaseViolation)
	}
	return fmt.Errorf("%w: unknown action %T", ErrPhaseViolation, a)
}

func (g *Game) requirePhase(want Phase, what string) error {
	if g.phase != want {
		return fmt.Errorf("%w: %s during %s", ErrPhaseViolation, what, g.phase)
	}
	return nil
}

func (g *Game) setVulnerability(a SetVulnerability) error {
	if err := g.requirePhase(PhaseSetup, "vulnerability"); err != nil {
		return err
	}
	if a.Value < VulNone || a.Value > VulAll {
		return fmt.Errorf("%w: bad vulnerability %d", ErrMalformedDeal, a.Value)
	}
	g.vul, g.vulSet = a.Value, true
	g.record.Vulnerability = a.Value
	return nil
}

func (g *Game) setDealer(a SetDealer) error {
	if err := g.requirePhase(PhaseSetup, "dealer"); err != nil {
		return err
	}
	if !a.Value.Valid() {
		return fmt.Errorf("%w: bad dealer %d", ErrMalformedDeal, a.Value)
	}
	g.dealer, g.dealerSet = a.Value, true
	g.record.Dealer = a.Value
	return nil
}

// ValidateDeal checks that cards partition the deck, 13 to a seat.
func ValidateDeal(cards []DealtCard) error {
	if len(cards) != 52 {
		return fmt.Errorf("%w: %d cards, want 52", ErrMalformedDeal, len(cards))
	}
	seen := make(map[Card]bool, 52)
	var counts [4]int
	for _, dc := range cards {
		if !dc.Seat.Valid() {
			return fmt.Errorf("%w: bad seat %d", ErrMalformedDeal, dc.Seat)
		}
		if !dc.Card.Valid() {
			return fmt.Errorf("%w: bad card %+v", ErrMalformedDeal, dc.Card)
		}
		if seen[dc.Card] {
			return fmt.Errorf("%w: duplicate card %s", ErrMalformedDeal, dc.Card)
		}
		seen[dc.Card] = true
		counts[dc.Seat]++
	}
	for s, n := range counts {
		if n != 13 {
			return fmt.Errorf("%w: %s holds %d cards, want 13", ErrMalformedDeal, Seat(s), n)
		}
	}
	return nil
}

func (g *Game) dealHands(a DealHands) error {
	if err := g.requirePhase(PhaseSetup, "deal"); err != nil {
		return err
	}
	if err := ValidateDeal(a.Cards); err != nil {
		return err
	}
	var hands Hands
	for _, dc := range a.Cards {
		hands[dc.Seat] = append(hands[dc.Seat], dc.Card)
	}
	g.hands, g.dealt = hands, true
	return nil
}

func (g *Game) makeCall(a MakeCall) error {
	auction := g.auction
	switch g.phase {
	case PhaseSetup:
		if !g.ready() {
			return fmt.Errorf("%w: dealer, vulnerability and hands must be set before the auction", ErrPhaseViolation)
		}
		auction = NewAuction(g.dealer)
	case PhaseAuction:
	default:
		return fmt.Errorf("%w: call during %s", ErrPhaseViolation, g.phase)
	}
	finished, err := auction.Submit(a.Seat, a.Call)
	if err != nil {
		return err
	}
	g.auction, g.phase = auction, PhaseAuction
	if finished {
		g.closeAuction()
	}
	return nil
}

func (g *Game) closeAuction() {
	// the auction is finished, neither query can fail
	c, _ := g.auction.Contract()
	decl, ok, _ := g.auction.Declarer()
	g.record.Contract = c
	g.record.Declarer, g.record.HasDeclarer = decl, ok
	if c.PassedOut() {
		g.record.Score, g.record.Scored = Result{}, true
		g.phase = PhaseFinished
		return
	}
	g.record.Tricks = make([]TrickResult, 0, 13)
	g.trick = NewTrick(c.Denom, decl.Next())
	g.phase = PhasePlay
}

func (g *Game) playCard(a PlayCard) error {
	if a.Card == NoCard && (g.phase == PhasePlay || g.phase == PhaseFinished) {
		return nil
	}
	if err := g.requirePhase(PhasePlay, "play"); err != nil {
		return err
	}
	done, err := g.trick.AddCard(a.Seat, a.Card, &g.hands)
	if err != nil || !done {
		return err
	}
	// a complete trick always has a winner
	winner, _ := g.trick.Winner()
	g.record.Tricks = append(g.record.Tricks, TrickResult{Leader: g.trick.Leader(), Plays: g.trick.Plays(), Winner: winner})
	if winner.Side() == g.record.Declarer.Side() {
		g.record.DeclarerTricks++
	}
	if len(g.record.Tricks) < 13 {
		g.trick = NewTrick(g.record.Contract.Denom, winner)
		return nil
	}
	g.record.Score = Score(g.record.Contract, g.record.Declarer, g.record.DeclarerTricks, g.vul)
	g.record.Scored = true
	g.trick = nil
	g.phase = PhaseFinished
	return nil
}
