package record

import (
	"errors"
	"strings"
	"testing"

	"bridgebench/server/engine"
)

const sample = `{"type":"game"}
{"type":"tag","name":"Event","value":"club night"}
{"type":"tag","name":"Vulnerable","value":"NS"}
{"type":"tag","name":"Dealer","value":"E"}
{"type":"tag","name":"Deal","value":"N:AKQJT98765432... .AKQJT98765432.. ..AKQJT98765432. ...AKQJT98765432"}
{"type":"tag","name":"Auction","value":"E","tokens":["1H","=1=","Pass","Pass","AP"]}
{"type":"tag","name":"Play","value":"S","tokens":["D2","C2","S2","H2","*"]}
{"type":"tag","name":"Contract","value":"1H"}
{"type":"tag","name":"Declarer","value":"E"}
{"type":"tag","name":"Result","value":"13"}
{"type":"tag","name":"Score","value":"NS -260"}
not json

{"type":"game"}
{"type":"tag","name":"Vulnerable","value":"None"}
`

func TestDecode(t *testing.T) {
	boards, err := Decode(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	if len(boards) != 2 {
		t.Fatalf("boards = %d, want 2", len(boards))
	}
	b := boards[0]
	if b.Has("Event") {
		t.Fatalf("unwanted tag kept")
	}
	if boards[1].Index != 1 || !boards[1].Has(TagVulnerable) {
		t.Fatalf("second board = %+v", boards[1])
	}

	e := b.Expected()
	if e.Declarer != "E" || e.Contract != "1H" || e.Result == nil || *e.Result != 13 || e.Score != "NS -260" {
		t.Fatalf("expected = %+v", e)
	}
}

func TestBoardActions(t *testing.T) {
	boards, _ := Decode(strings.NewReader(sample))
	b := boards[0]

	setup, err := b.Setup()
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if v := setup[0].(engine.SetVulnerability).Value; v != engine.VulNS {
		t.Fatalf("vulnerability = %s", v)
	}
	if d := setup[1].(engine.SetDealer).Value; d != engine.East {
		t.Fatalf("dealer = %s", d)
	}
	deal := setup[2].(engine.DealHands)
	if err := engine.ValidateDeal(deal.Cards); err != nil {
		t.Fatalf("deal: %v", err)
	}
	if deal.Cards[0].Seat != engine.North || deal.Cards[0].Card.Suit != engine.Spades {
		t.Fatalf("first card = %+v", deal.Cards[0])
	}

	calls, err := b.Calls()
	if err != nil {
		t.Fatal(err)
	}
	// 1H Pass Pass then AP adds north's closing pass
	if len(calls) != 4 {
		t.Fatalf("calls = %v", calls)
	}
	last := calls[3].(engine.MakeCall)
	if last.Seat != engine.North || last.Call != engine.Pass() {
		t.Fatalf("closing call = %+v", last)
	}

	rows, err := b.PlayRows()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || len(rows[0]) != 4 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0][0].Seat != engine.South || rows[0][3].Seat != engine.East {
		t.Fatalf("row seats = %+v", rows[0])
	}

	_, err = boards[1].Setup()
	if !errors.Is(err, ErrMissingTag) {
		t.Fatalf("missing dealer: %v", err)
	}
}

func TestAllPass(t *testing.T) {
	b := Board{Tags: map[string]Tag{
		TagAuction: {Name: TagAuction, Value: "W", Tokens: []string{"AP"}},
	}}
	calls, err := b.Calls()
	if err != nil {
		t.Fatal(err)
	}
	if len(calls) != 4 || calls[0].(engine.MakeCall).Seat != engine.West {
		t.Fatalf("calls = %v", calls)
	}
}

func TestDealCards(t *testing.T) {
	var cards []DealtCard
	for i, c := range engine.NewDeck() {
		cards = append(cards, DealtCard{Seat: engine.Seats[i%4].String(), Suit: c.Suit.String(), Rank: c.Rank.String()})
	}
	b := Board{Tags: map[string]Tag{TagDeal: {Name: TagDeal, Cards: cards}}}
	d, err := b.Deal()
	if err != nil {
		t.Fatal(err)
	}
	if err := engine.ValidateDeal(d.Cards); err != nil {
		t.Fatalf("deal: %v", err)
	}

	cards[0].Rank = "1"
	if _, err := b.Deal(); err == nil {
		t.Fatalf("bad rank accepted")
	}
}

func TestParseDeal(t *testing.T) {
	if _, err := ParseDeal("N:AK.QJ"); err == nil {
		t.Fatalf("short deal accepted")
	}
	d, err := ParseDeal("W:- - - -")
	if err != nil || len(d.Cards) != 0 {
		t.Fatalf("unknown hands: %v, %v", d, err)
	}
}

func playBoard(tokens ...string) Board {
	return Board{Tags: map[string]Tag{TagPlay: {Name: TagPlay, Value: "E", Tokens: tokens}}}
}

func TestPlayRowsAnnotations(t *testing.T) {
	b := playBoard("SA!", "=1=", "S2", "$4", "{hesitated}", "S3", "!", "S4?", "HA", "*", "HK")
	rows, err := b.PlayRows()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || len(rows[0]) != 4 || len(rows[1]) != 1 {
		t.Fatalf("rows = %v", rows)
	}
	first := rows[0][0]
	if first.Seat != engine.East || first.Card != (engine.Card{Suit: engine.Spades, Rank: engine.Ace}) {
		t.Fatalf("first play = %+v", first)
	}
	if rows[0][3].Seat != engine.North || rows[1][0].Seat != engine.East {
		t.Fatalf("annotations shifted seats: %+v", rows)
	}
}

func TestPlayRowsBadToken(t *testing.T) {
	_, err := playBoard("HA", "Z9", "H2", "H3").PlayRows()
	if err == nil || !strings.Contains(err.Error(), "play token 1") {
		t.Fatalf("err = %v", err)
	}
}

func TestCallsBadToken(t *testing.T) {
	b := Board{Tags: map[string]Tag{
		TagAuction: {Name: TagAuction, Value: "N", Tokens: []string{"1C", "=2=", "8S", "Pass"}},
	}}
	_, err := b.Calls()
	if !errors.Is(err, engine.ErrInvalidCall) || !strings.Contains(err.Error(), "auction token 2") {
		t.Fatalf("err = %v", err)
	}
}
