package engine

import (
	"errors"
	"strings"
	"testing"
)

// runCalls submits space separated tokens starting with dealer.
func runCalls(t *testing.T, dealer Seat, tokens string) (*Auction, error) {
	t.Helper()
	a := NewAuction(dealer)
	for _, tok := range strings.Fields(tokens) {
		c, err := ParseCall(tok)
		if err != nil {
			t.Fatalf("parse %q: %v", tok, err)
		}
		if _, err := a.Submit(a.Turn(), c); err != nil {
			return a, err
		}
	}
	return a, nil
}

func TestAuctionLegality(t *testing.T) {
	tests := []struct {
		name    string
		dealer  Seat
		calls   string
		wantErr error
	}{
		{name: "opening bid", dealer: North, calls: "1C"},
		{name: "higher denomination same level", dealer: North, calls: "1S 1NT"},
		{name: "lower bid rejected", dealer: North, calls: "1S 1H", wantErr: ErrInvalidCall},
		{name: "equal bid rejected", dealer: North, calls: "1S Pass 1S", wantErr: ErrInvalidCall},
		{name: "double opponents", dealer: North, calls: "1S X"},
		{name: "double after passes", dealer: North, calls: "1S Pass Pass X"},
		{name: "double partner", dealer: North, calls: "1S Pass X", wantErr: ErrInvalidCall},
		{name: "double with no bid", dealer: East, calls: "X", wantErr: ErrInvalidCall},
		{name: "double a double", dealer: North, calls: "1S X X", wantErr: ErrInvalidCall},
		{name: "redouble", dealer: North, calls: "1S X XX"},
		{name: "redouble after passes", dealer: North, calls: "1S X Pass Pass XX"},
		{name: "redouble own side double", dealer: North, calls: "1S X Pass XX", wantErr: ErrInvalidCall},
		{name: "redouble undoubled bid", dealer: North, calls: "1S XX", wantErr: ErrInvalidCall},
		{name: "redouble twice", dealer: North, calls: "1S X XX Pass Pass XX", wantErr: ErrInvalidCall},
		{name: "bid after redouble", dealer: West, calls: "1S X XX 2C"},
		{name: "call after close", dealer: North, calls: "1C Pass Pass Pass Pass", wantErr: ErrPhaseViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCalls(t, tt.dealer, tt.calls)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuctionOutOfTurn(t *testing.T) {
	a := NewAuction(South)
	if _, err := a.Submit(North, Pass()); !errors.Is(err, ErrOutOfTurn) {
		t.Fatalf("expected out of turn, got %v", err)
	}
	if len(a.Calls()) != 0 {
		t.Fatalf("rejected call was recorded")
	}
	if _, err := a.Submit(South, Bid(1, NoTrump)); err != nil {
		t.Fatalf("dealer call: %v", err)
	}
	if a.Turn() != West {
		t.Fatalf("turn = %s, want W", a.Turn())
	}
}

func TestAuctionRejectedCallKeepsState(t *testing.T) {
	a, _ := runCalls(t, North, "1S Pass")
	before := a.Calls()
	if _, err := a.Submit(South, Bid(1, DenomHearts)); !errors.Is(err, ErrInvalidCall) {
		t.Fatalf("expected invalid call, got %v", err)
	}
	after := a.Calls()
	if len(after) != len(before) || a.Turn() != South {
		t.Fatalf("state changed after rejected call: %v", after)
	}
}

func TestAuctionPassOut(t *testing.T) {
	a, err := runCalls(t, East, "Pass Pass Pass")
	if err != nil {
		t.Fatal(err)
	}
	if a.Finished() {
		t.Fatalf("three passes must not close the auction")
	}
	if _, err := a.Contract(); !errors.Is(err, ErrAuctionNotFinished) {
		t.Fatalf("contract before close: %v", err)
	}
	if _, _, err := a.Declarer(); !errors.Is(err, ErrAuctionNotFinished) {
		t.Fatalf("declarer before close: %v", err)
	}
	done, err := a.Submit(a.Turn(), Pass())
	if err != nil || !done {
		t.Fatalf("fourth pass: done=%v err=%v", done, err)
	}
	c, err := a.Contract()
	if err != nil || !c.PassedOut() || c.String() != "Pass" {
		t.Fatalf("contract = %v, %v", c, err)
	}
	if _, ok, err := a.Declarer(); ok || err != nil {
		t.Fatalf("passed out deal has a declarer")
	}
}

func TestAuctionCloses(t *testing.T) {
	a := NewAuction(North)
	calls := []Call{Pass(), Bid(1, NoTrump), Pass(), Pass(), Pass()}
	for i, c := range calls {
		done, err := a.Submit(a.Turn(), c)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if done != (i == len(calls)-1) {
			t.Fatalf("call %d: finished=%v", i, done)
		}
	}
	c, _ := a.Contract()
	if c.String() != "1NT" {
		t.Fatalf("contract = %s", c)
	}
	decl, ok, _ := a.Declarer()
	if !ok || decl != East {
		t.Fatalf("declarer = %s, want E", decl)
	}
}

func TestAuctionContractAndDeclarer(t *testing.T) {
	tests := []struct {
		name     string
		dealer   Seat
		calls    string
		contract string
		declarer Seat
	}{
		{name: "opener rebids new suit", dealer: North, calls: "1C Pass 1D Pass 1H Pass Pass Pass", contract: "1H", declarer: North},
		{name: "partner raises", dealer: North, calls: "1H Pass 4H Pass Pass Pass", contract: "4H", declarer: North},
		{name: "first to name strain is declarer", dealer: North, calls: "1C Pass 1H Pass 2NT Pass 3H Pass 4H Pass Pass Pass", contract: "4H", declarer: South},
		{name: "opponent named strain first", dealer: North, calls: "1S 2S Pass Pass 2NT Pass 3S Pass Pass Pass", contract: "3S", declarer: North},
		{name: "doubled", dealer: West, calls: "1S X Pass Pass Pass", contract: "1SX", declarer: West},
		{name: "redoubled", dealer: North, calls: "1D X XX Pass Pass Pass", contract: "1DXX", declarer: North},
		{name: "double cleared by new bid", dealer: East, calls: "1S X 2C Pass Pass Pass", contract: "2C", declarer: West},
		{name: "passes then double", dealer: North, calls: "4S Pass Pass X Pass Pass Pass", contract: "4SX", declarer: North},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := runCalls(t, tt.dealer, tt.calls)
			if err != nil {
				t.Fatalf("calls: %v", err)
			}
			if !a.Finished() {
				t.Fatalf("auction not finished")
			}
			for i := 0; i < 2; i++ {
				c, err := a.Contract()
				if err != nil || c.String() != tt.contract {
					t.Fatalf("contract = %s, %v; want %s", c, err, tt.contract)
				}
				d, ok, err := a.Declarer()
				if err != nil || !ok || d != tt.declarer {
					t.Fatalf("declarer = %s, want %s", d, tt.declarer)
				}
			}
		})
	}
}

func TestAuctionLegalCalls(t *testing.T) {
	a := NewAuction(North)
	if got := len(a.LegalCalls()); got != 36 {
		t.Fatalf("opening legal calls = %d, want 36", got)
	}
	a, _ = runCalls(t, North, "7S")
	got := a.LegalCalls()
	// East: pass, double, 7NT
	if len(got) != 3 || got[1] != Double() || got[2] != Bid(7, NoTrump) {
		t.Fatalf("legal calls over 7S = %v", got)
	}
	a, _ = runCalls(t, North, "1C Pass Pass Pass")
	if a.LegalCalls() != nil {
		t.Fatalf("finished auction offers calls")
	}
}

func TestParseCall(t *testing.T) {
	for _, tok := range []string{"Pass", "X", "XX", "1C", "3NT", "7S"} {
		c, err := ParseCall(tok)
		if err != nil {
			t.Fatalf("%s: %v", tok, err)
		}
		if c.String() != tok {
			t.Fatalf("round trip %s -> %s", tok, c)
		}
	}
	if c, err := ParseCall("2N"); err != nil || c != Bid(2, NoTrump) {
		t.Fatalf("2N = %v, %v", c, err)
	}
	for _, tok := range []string{"", "P", "0C", "8S", "1Z", "XXX", "AP"} {
		if _, err := ParseCall(tok); !errors.Is(err, ErrInvalidCall) {
			t.Fatalf("%q accepted", tok)
		}
	}
}
