package engine

import "fmt"

// Seat is one of the four compass positions. Values follow the clockwise
// turn order so Seat arithmetic mod 4 walks the table.
type Seat int

const (
	North Seat = iota
	East
	South
	West
)

var Seats = [4]Seat{North, East, South, West}

func (s Seat) String() string {
	switch s {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	}
	return fmt.Sprintf("Seat(%d)", int(s))
}

func (s Seat) Valid() bool { return s >= North && s <= West }

// Offset returns the seat n places clockwise of s.
func (s Seat) Offset(n int) Seat { return Seat(((int(s)+n)%4 + 4) % 4) }
func (s Seat) Next() Seat        { return s.Offset(1) }

func (s Seat) Side() Side {
	if s == North || s == South {
		return NS
	}
	return EW
}

func ParseSeat(v string) (Seat, error) {
	switch v {
	case "N":
		return North, nil
	case "E":
		return East, nil
	case "S":
		return South, nil
	case "W":
		return West, nil
	}
	return 0, fmt.Errorf("unknown seat %q", v)
}

// Side is a fixed partnership.
type Side int

const (
	NS Side = iota
	EW
)

// ReferenceSide anchors the sign of reported scores.
const ReferenceSide = NS

func (s Side) String() string {
	if s == NS {
		return "NS"
	}
	return "EW"
}

func (s Side) Opponent() Side { return 1 - s }

type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

var Suits = [4]Suit{Clubs, Diamonds, Hearts, Spades}

func (s Suit) String() string {
	if s < Clubs || s > Spades {
		return "?"
	}
	return string("CDHS"[s])
}

// Rank uses face values, Ace high (14).
type Rank int

const (
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

const rankChars = "  23456789TJQKA"

func (r Rank) String() string {
	if r < Two || r > Ace {
		return "?"
	}
	return string(rankChars[r])
}

type Card struct {
	Suit Suit
	Rank Rank
}

// NoCard is the decoded form of the "no card" play token.
var NoCard = Card{}

// Denomination is the strain of a bid; the order is the bidding order.
type Denomination int

const (
	DenomClubs Denomination = iota
	DenomDiamonds
	DenomHearts
	DenomSpades
	NoTrump
)

func (d Denomination) String() string {
	switch d {
	case DenomClubs:
		return "C"
	case DenomDiamonds:
		return "D"
	case DenomHearts:
		return "H"
	case DenomSpades:
		return "S"
	case NoTrump:
		return "NT"
	}
	return "?"
}

func (d Denomination) Valid() bool { return d >= DenomClubs && d <= NoTrump }

// Trump reports the suit that trumps under d, or false for no-trump.
func (d Denomination) Trump() (Suit, bool) {
	if d >= DenomClubs && d <= DenomSpades {
		return Suit(d), true
	}
	return 0, false
}

// Major reports whether tricks in d score 30 from the first.
func (d Denomination) Major() bool { return d == DenomHearts || d == DenomSpades }

type Vulnerability int

const (
	VulNone Vulnerability = iota
	VulNS
	VulEW
	VulAll
)

func (v Vulnerability) String() string {
	switch v {
	case VulNone:
		return "None"
	case VulNS:
		return "NS"
	case VulEW:
		return "EW"
	case VulAll:
		return "All"
	}
	return "?"
}

// Includes reports whether side is vulnerable.
func (v Vulnerability) Includes(side Side) bool {
	switch v {
	case VulAll:
		return true
	case VulNS:
		return side == NS
	case VulEW:
		return side == EW
	}
	return false
}

// ParseVulnerability accepts the record spellings, including the PBN
// aliases Love/-/Both.
func ParseVulnerability(v string) (Vulnerability, error) {
	switch v {
	case "None", "Love", "-":
		return VulNone, nil
	case "NS":
		return VulNS, nil
	case "EW":
		return VulEW, nil
	case "All", "Both":
		return VulAll, nil
	}
	return 0, fmt.Errorf("unknown vulnerability %q", v)
}

type Risk int

const (
	Undoubled Risk = iota
	Doubled
	Redoubled
)

func (r Risk) String() string {
	switch r {
	case Doubled:
		return "X"
	case Redoubled:
		return "XX"
	}
	return ""
}

// Contract is the outcome of a finished auction. Level 0 means the deal
// was passed out and Denom/Risk carry no meaning.
type Contract struct {
	Level int
	Denom Denomination
	Risk  Risk
}

func (c Contract) PassedOut() bool { return c.Level == 0 }

func (c Contract) String() string {
	if c.PassedOut() {
		return "Pass"
	}
	return fmt.Sprintf("%d%s%s", c.Level, c.Denom, c.Risk)
}

// TricksNeeded is the number of tricks declarer's side must take.
func (c Contract) TricksNeeded() int { return 6 + c.Level }
