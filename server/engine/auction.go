package engine

import "fmt"

// AuctionCall is one entry of the bidding sequence.
type AuctionCall struct {
	Seat Seat `json:"seat"`
	Call Call `json:"call"`
}

// Auction owns the bidding sequence of one deal. It only grows through
// Submit and is frozen once Finished reports true.
type Auction struct {
	dealer  Seat
	calls   []AuctionCall
	lastBid int // index into calls, -1 before the first bid
}

func NewAuction(dealer Seat) *Auction {
	return &Auction{dealer: dealer, lastBid: -1}
}

func (a *Auction) Dealer() Seat { return a.dealer }

// Turn returns the seat whose call is next.
func (a *Auction) Turn() Seat { return a.dealer.Offset(len(a.calls)) }

func (a *Auction) Calls() []AuctionCall { return append([]AuctionCall(nil), a.calls...) }

// lastAction returns the most recent call that is not a pass.
func (a *Auction) lastAction() (AuctionCall, bool) {
	for i := len(a.calls) - 1; i >= 0; i-- {
		if a.calls[i].Call.Kind != CallPass {
			return a.calls[i], true
		}
	}
	return AuctionCall{}, false
}

// Check reports whether seat may make call now without changing anything.
func (a *Auction) Check(seat Seat, call Call) error {
	if a.Finished() {
		return fmt.Errorf("%w: auction is closed", ErrPhaseViolation)
	}
	if seat != a.Turn() {
		return fmt.Errorf("%w: %s to call, not %s", ErrOutOfTurn, a.Turn(), seat)
	}
	if !call.Valid() {
		return fmt.Errorf("%w: malformed call %+v", ErrInvalidCall, call)
	}
	switch call.Kind {
	case CallPass:
		return nil
	case CallDouble:
		last, ok := a.lastAction()
		if !ok || last.Call.Kind != CallBid {
			return fmt.Errorf("%w: nothing to double", ErrInvalidCall)
		}
		if last.Seat.Side() == seat.Side() {
			return fmt.Errorf("%w: cannot double own side's bid", ErrInvalidCall)
		}
	case CallRedouble:
		last, ok := a.lastAction()
		if !ok || last.Call.Kind != CallDouble {
			return fmt.Errorf("%w: nothing to redouble", ErrInvalidCall)
		}
		if last.Seat.Side() == seat.Side() {
			return fmt.Errorf("%w: cannot redouble own side's double", ErrInvalidCall)
		}
	case CallBid:
		if a.lastBid >= 0 {
			prev := a.calls[a.lastBid].Call
			if call.key() <= prev.key() {
				return fmt.Errorf("%w: %s does not exceed %s", ErrInvalidCall, call, prev)
			}
		}
	}
	return nil
}

// Submit appends call for seat and reports whether the auction is now
// finished. A rejected call leaves the auction unchanged.
func (a *Auction) Submit(seat Seat, call Call) (bool, error) {
	if err := a.Check(seat, call); err != nil {
		return false, err
	}
	a.calls = append(a.calls, AuctionCall{Seat: seat, Call: call})
	if call.IsBid() {
		a.lastBid = len(a.calls) - 1
	}
	return a.Finished(), nil
}

// Finished: four opening passes, or three passes after the latest bid.
func (a *Auction) Finished() bool {
	if a.lastBid < 0 {
		// no bid yet means every call so far was a pass
		return len(a.calls) >= 4
	}
	n := len(a.calls)
	if n-1-a.lastBid < 3 {
		return false
	}
	for _, c := range a.calls[n-3:] {
		if c.Call.Kind != CallPass {
			return false
		}
	}
	return true
}

// Contract derives the final contract. Passed-out auctions return the
// zero Contract.
func (a *Auction) Contract() (Contract, error) {
	if !a.Finished() {
		return Contract{}, ErrAuctionNotFinished
	}
	if a.lastBid < 0 {
		return Contract{}, nil
	}
	bid := a.calls[a.lastBid].Call
	c := Contract{Level: bid.Level, Denom: bid.Denom}
	for _, ac := range a.calls[a.lastBid+1:] {
		switch ac.Call.Kind {
		case CallRedouble:
			c.Risk = Redoubled
		case CallDouble:
			if c.Risk == Undoubled {
				c.Risk = Doubled
			}
		}
	}
	return c, nil
}

// Declarer is the first player of the side that won the auction to have
// named the final denomination. ok is false on a pass-out.
func (a *Auction) Declarer() (seat Seat, ok bool, err error) {
	if !a.Finished() {
		return 0, false, ErrAuctionNotFinished
	}
	if a.lastBid < 0 {
		return 0, false, nil
	}
	final := a.calls[a.lastBid]
	side := final.Seat.Side()
	for _, ac := range a.calls[:a.lastBid+1] {
		if ac.Call.IsBid() && ac.Call.Denom == final.Call.Denom && ac.Seat.Side() == side {
			return ac.Seat, true, nil
		}
	}
	return final.Seat, true, nil
}

// LegalCalls lists every call the seat to act may make, pass first.
func (a *Auction) LegalCalls() []Call {
	if a.Finished() {
		return nil
	}
	seat := a.Turn()
	out := []Call{Pass()}
	for _, c := range []Call{Double(), Redouble()} {
		if a.Check(seat, c) == nil {
			out = append(out, c)
		}
	}
	for _, c := range AllBids() {
		if a.Check(seat, c) == nil {
			out = append(out, c)
		}
	}
	return out
}
