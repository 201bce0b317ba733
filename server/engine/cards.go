package engine

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Shuffler is the random source used to deal fresh boards. *rand.Rand
// satisfies it; tests inject fixed orderings.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// NewRand returns a seeded source; seed 0 picks a time based seed.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// NewDeck returns the 52 cards ordered by suit then rank.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range Suits {
		for r := Two; r <= Ace; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

func Shuffle(deck []Card, r Shuffler) {
	r.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
}

// RandomDeal shuffles a fresh deck and deals 13 cards to each seat in
// N, E, S, W blocks.
func RandomDeal(r Shuffler) DealHands {
	deck := NewDeck()
	Shuffle(deck, r)
	cards := make([]DealtCard, 0, len(deck))
	for i, c := range deck {
		cards = append(cards, DealtCard{Seat: Seats[i/13], Card: c})
	}
	return DealHands{Cards: cards}
}

func (c Card) String() string {
	if c == NoCard {
		return "*"
	}
	return c.Suit.String() + c.Rank.String()
}

func (c Card) Valid() bool {
	return c.Suit >= Clubs && c.Suit <= Spades && c.Rank >= Two && c.Rank <= Ace
}

func ParseSuit(v string) (Suit, error) {
	if len(v) == 1 {
		if i := strings.IndexByte("CDHS", v[0]); i >= 0 {
			return Suit(i), nil
		}
	}
	return 0, fmt.Errorf("unknown suit %q", v)
}

func ParseRank(v string) (Rank, error) {
	if len(v) == 1 {
		if i := strings.IndexByte(rankChars, v[0]); i >= int(Two) {
			return Rank(i), nil
		}
	}
	// some records spell the ten out
	if v == "10" {
		return Ten, nil
	}
	return 0, fmt.Errorf("unknown rank %q", v)
}

// ParseCard reads a <suit><rank> token such as "SA" or "H7". The "*" and
// "-" tokens decode to NoCard.
func ParseCard(tok string) (Card, error) {
	if tok == "*" || tok == "-" {
		return NoCard, nil
	}
	if len(tok) < 2 {
		return NoCard, fmt.Errorf("bad card token %q", tok)
	}
	s, err := ParseSuit(strings.ToUpper(tok[:1]))
	if err != nil {
		return NoCard, fmt.Errorf("bad card token %q: %w", tok, err)
	}
	r, err := ParseRank(strings.ToUpper(tok[1:]))
	if err != nil {
		return NoCard, fmt.Errorf("bad card token %q: %w", tok, err)
	}
	return Card{Suit: s, Rank: r}, nil
}

// Hand is the unplayed cards of one seat.
type Hand []Card

func (h Hand) Has(c Card) bool { return h.index(c) >= 0 }

func (h Hand) HasSuit(s Suit) bool {
	for _, c := range h {
		if c.Suit == s {
			return true
		}
	}
	return false
}

func (h Hand) index(c Card) int {
	for i, v := range h {
		if v == c {
			return i
		}
	}
	return -1
}

func (h *Hand) remove(c Card) {
	if i := h.index(c); i >= 0 {
		*h = append((*h)[:i], (*h)[i+1:]...)
	}
}

// Hands holds the four hands indexed by Seat.
type Hands [4]Hand

func (hs Hands) Of(s Seat) Hand { return hs[s] }

// Clone returns a deep copy so callers cannot alias the game's hands.
func (hs Hands) Clone() Hands {
	var out Hands
	for i := range hs {
		out[i] = append(Hand(nil), hs[i]...)
	}
	return out
}

// Count is the number of cards still held across all seats.
func (hs Hands) Count() int {
	n := 0
	for _, h := range hs {
		n += len(h)
	}
	return n
}
