package engine

import "fmt"

// Play is one card contributed to a trick.
type Play struct {
	Seat Seat `json:"seat"`
	Card Card `json:"card"`
}

// Trick holds up to four plays led by Leader.
type Trick struct {
	trump  Denomination
	leader Seat
	plays  []Play
}

// NewTrick starts an empty trick. A NoTrump denomination means no suit
// trumps.
func NewTrick(trump Denomination, leader Seat) *Trick {
	return &Trick{trump: trump, leader: leader, plays: make([]Play, 0, 4)}
}

func (t *Trick) Leader() Seat        { return t.leader }
func (t *Trick) Trump() Denomination { return t.trump }
func (t *Trick) Plays() []Play       { return append([]Play(nil), t.plays...) }
func (t *Trick) Complete() bool      { return len(t.plays) == 4 }

// NextPlayer is the leader offset by the number of cards played.
func (t *Trick) NextPlayer() Seat { return t.leader.Offset(len(t.plays)) }

// LedSuit reports the suit of the first card, if any.
func (t *Trick) LedSuit() (Suit, bool) {
	if len(t.plays) == 0 {
		return 0, false
	}
	return t.plays[0].Card.Suit, true
}

// Check validates a play without touching the trick or the hands.
func (t *Trick) Check(seat Seat, card Card, hands *Hands) error {
	if t.Complete() {
		return fmt.Errorf("%w: trick already has four cards", ErrPhaseViolation)
	}
	if seat != t.NextPlayer() {
		return fmt.Errorf("%w: %s to play, not %s", ErrOutOfTurn, t.NextPlayer(), seat)
	}
	hand := hands[seat]
	if !hand.Has(card) {
		return fmt.Errorf("%w: %s does not hold %s", ErrRevoke, seat, card)
	}
	if led, ok := t.LedSuit(); ok && card.Suit != led && hand.HasSuit(led) {
		return fmt.Errorf("%w: %s must follow %s", ErrSuitViolation, seat, led)
	}
	return nil
}

// AddCard plays card from seat's hand and reports whether the trick is
// now complete.
func (t *Trick) AddCard(seat Seat, card Card, hands *Hands) (bool, error) {
	if err := t.Check(seat, card, hands); err != nil {
		return false, err
	}
	hands[seat].remove(card)
	t.plays = append(t.plays, Play{Seat: seat, Card: card})
	return t.Complete(), nil
}

// playKey ranks a play: trumps over the led suit over discards.
func (t *Trick) playKey(p Play, led Suit) (int, Rank) {
	if s, ok := t.trump.Trump(); ok && p.Card.Suit == s {
		return 2, p.Card.Rank
	}
	if p.Card.Suit == led {
		return 1, p.Card.Rank
	}
	return 0, p.Card.Rank
}

// Winner returns the seat that won a complete trick.
func (t *Trick) Winner() (Seat, error) {
	if !t.Complete() {
		return 0, fmt.Errorf("%w: %d of 4 cards played", ErrTrickIncomplete, len(t.plays))
	}
	led := t.plays[0].Card.Suit
	best := t.plays[0]
	bc, br := t.playKey(best, led)
	for _, p := range t.plays[1:] {
		c, r := t.playKey(p, led)
		if c > bc || (c == bc && r > br) {
			best, bc, br = p, c, r
		}
	}
	return best.Seat, nil
}

// LegalPlays lists the cards seat may play to this trick.
func (t *Trick) LegalPlays(seat Seat, hands *Hands) []Card {
	if t.Complete() || seat != t.NextPlayer() {
		return nil
	}
	hand := hands[seat]
	led, ok := t.LedSuit()
	if !ok || !hand.HasSuit(led) {
		return append([]Card(nil), hand...)
	}
	var out []Card
	for _, c := range hand {
		if c.Suit == led {
			out = append(out, c)
		}
	}
	return out
}
