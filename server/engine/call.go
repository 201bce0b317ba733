package engine

import (
	"fmt"
	"strconv"
	"strings"
)

type CallKind int

const (
	CallPass CallKind = iota
	CallDouble
	CallRedouble
	CallBid
)

// Call is one bidding action. Level and Denom are only set for bids.
type Call struct {
	Kind  CallKind
	Level int
	Denom Denomination
}

const (
	MinLevel = 1
	MaxLevel = 7
)

func Pass() Call     { return Call{Kind: CallPass} }
func Double() Call   { return Call{Kind: CallDouble} }
func Redouble() Call { return Call{Kind: CallRedouble} }

func Bid(level int, d Denomination) Call {
	return Call{Kind: CallBid, Level: level, Denom: d}
}

func (c Call) IsBid() bool { return c.Kind == CallBid }

// Valid reports whether c is well formed; it says nothing about whether
// the call is legal at a given point of an auction.
func (c Call) Valid() bool {
	switch c.Kind {
	case CallPass, CallDouble, CallRedouble:
		return true
	case CallBid:
		return c.Level >= MinLevel && c.Level <= MaxLevel && c.Denom.Valid()
	}
	return false
}

// key orders bids: any bid must carry a strictly greater key than the
// bid before it.
func (c Call) key() int { return (c.Level-1)*5 + int(c.Denom) }

func (c Call) String() string {
	switch c.Kind {
	case CallPass:
		return "Pass"
	case CallDouble:
		return "X"
	case CallRedouble:
		return "XX"
	}
	return strconv.Itoa(c.Level) + c.Denom.String()
}

// ParseCall reads a Pass | X | XX | <level><denom> token.
func ParseCall(tok string) (Call, error) {
	switch tok {
	case "Pass":
		return Pass(), nil
	case "X":
		return Double(), nil
	case "XX":
		return Redouble(), nil
	}
	if len(tok) < 2 {
		return Call{}, fmt.Errorf("%w: bad call token %q", ErrInvalidCall, tok)
	}
	level := int(tok[0] - '0')
	d, ok := parseDenom(strings.ToUpper(tok[1:]))
	c := Bid(level, d)
	if !ok || !c.Valid() {
		return Call{}, fmt.Errorf("%w: bad call token %q", ErrInvalidCall, tok)
	}
	return c, nil
}

func parseDenom(v string) (Denomination, bool) {
	for d := DenomClubs; d <= NoTrump; d++ {
		if d.String() == v {
			return d, true
		}
	}
	// PBN accepts N for no-trump
	if v == "N" {
		return NoTrump, true
	}
	return 0, false
}

// AllBids lists every bid from 1C to 7NT in ascending order.
func AllBids() []Call {
	out := make([]Call, 0, 35)
	for l := MinLevel; l <= MaxLevel; l++ {
		for d := DenomClubs; d <= NoTrump; d++ {
			out = append(out, Bid(l, d))
		}
	}
	return out
}
