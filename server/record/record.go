// Package record reads parsed PBN game records (JSON lines) and turns
// them into engine actions plus the outcome the record claims.
package record

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"bridgebench/server/engine"
)

var ErrMissingTag = errors.New("missing tag")

// Tags kept from each game; everything else in a record is ignored.
const (
	TagVulnerable = "Vulnerable"
	TagDealer     = "Dealer"
	TagDeal       = "Deal"
	TagDeclarer   = "Declarer"
	TagContract   = "Contract"
	TagResult     = "Result"
	TagScore      = "Score"
	TagAuction    = "Auction"
	TagPlay       = "Play"
)

var wanted = map[string]bool{
	TagVulnerable: true, TagDealer: true, TagDeal: true, TagDeclarer: true,
	TagContract: true, TagResult: true, TagScore: true, TagAuction: true, TagPlay: true,
}

type DealtCard struct {
	Seat string `json:"seat"`
	Suit string `json:"suit"`
	Rank string `json:"rank"`
}

// Tag is one {"type":"tag"} line.
type Tag struct {
	Name   string      `json:"name"`
	Value  string      `json:"value"`
	Tokens []string    `json:"tokens,omitempty"`
	Cards  []DealtCard `json:"cards,omitempty"`
}

type line struct {
	Type string `json:"type"`
	Tag
}

// Board is one game of a record file.
type Board struct {
	File  string         `json:"file,omitempty"`
	Index int            `json:"index"`
	Tags  map[string]Tag `json:"tags"`
}

func (b Board) tag(name string) (Tag, error) {
	t, ok := b.Tags[name]
	if !ok {
		return Tag{}, fmt.Errorf("%w: %s", ErrMissingTag, name)
	}
	return t, nil
}

func (b Board) Has(name string) bool {
	_, ok := b.Tags[name]
	return ok
}

// Decode reads every board from r. Lines that are not valid JSON are
// logged and skipped.
func Decode(r io.Reader) ([]Board, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var (
		boards []Board
		cur    *Board
		n      int
	)
	for sc.Scan() {
		n++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var l line
		if err := json.Unmarshal([]byte(text), &l); err != nil {
			log.Printf("record: line %d: invalid JSON: %v", n, err)
			continue
		}
		switch l.Type {
		case "game":
			if cur != nil {
				boards = append(boards, *cur)
			}
			cur = &Board{Index: len(boards), Tags: map[string]Tag{}}
		case "tag":
			if cur != nil && wanted[l.Name] {
				cur.Tags[l.Name] = l.Tag
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if cur != nil {
		boards = append(boards, *cur)
	}
	return boards, nil
}

// ReadFile decodes a record file and stamps each board with its name.
func ReadFile(path string) ([]Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	boards, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	name := path
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		name = path[i+1:]
	}
	for i := range boards {
		boards[i].File = name
	}
	return boards, nil
}

// Setup returns the vulnerability, dealer and deal actions.
func (b Board) Setup() ([]engine.Action, error) {
	vt, err := b.tag(TagVulnerable)
	if err != nil {
		return nil, err
	}
	vul, err := engine.ParseVulnerability(vt.Value)
	if err != nil {
		return nil, err
	}
	dt, err := b.tag(TagDealer)
	if err != nil {
		return nil, err
	}
	dealer, err := engine.ParseSeat(dt.Value)
	if err != nil {
		return nil, err
	}
	deal, err := b.Deal()
	if err != nil {
		return nil, err
	}
	return []engine.Action{
		engine.SetVulnerability{Value: vul},
		engine.SetDealer{Value: dealer},
		deal,
	}, nil
}

// Deal converts the Deal tag. The parsed "cards" list is preferred; the
// raw PBN form "N:AKQ.JT9.876.5432 ..." is accepted as a fallback.
func (b Board) Deal() (engine.DealHands, error) {
	t, err := b.tag(TagDeal)
	if err != nil {
		return engine.DealHands{}, err
	}
	if len(t.Cards) == 0 && t.Value != "" {
		return ParseDeal(t.Value)
	}
	out := make([]engine.DealtCard, 0, len(t.Cards))
	for i, c := range t.Cards {
		seat, err := engine.ParseSeat(c.Seat)
		if err != nil {
			return engine.DealHands{}, fmt.Errorf("deal card %d: %w", i, err)
		}
		card, err := engine.ParseCard(c.Suit + c.Rank)
		if err != nil || card == engine.NoCard {
			return engine.DealHands{}, fmt.Errorf("deal card %d: bad card %s%s", i, c.Suit, c.Rank)
		}
		out = append(out, engine.DealtCard{Seat: seat, Card: card})
	}
	return engine.DealHands{Cards: out}, nil
}

// ParseDeal reads a PBN deal string. Hands are listed clockwise from the
// named seat, suits in S.H.D.C order; "-" marks an unknown hand.
func ParseDeal(v string) (engine.DealHands, error) {
	first, rest, ok := strings.Cut(strings.TrimSpace(v), ":")
	if !ok {
		return engine.DealHands{}, fmt.Errorf("bad deal %q", v)
	}
	seat, err := engine.ParseSeat(strings.ToUpper(first))
	if err != nil {
		return engine.DealHands{}, err
	}
	hands := strings.Fields(rest)
	if len(hands) != 4 {
		return engine.DealHands{}, fmt.Errorf("bad deal %q: %d hands", v, len(hands))
	}
	order := [4]engine.Suit{engine.Spades, engine.Hearts, engine.Diamonds, engine.Clubs}
	var out []engine.DealtCard
	for i, h := range hands {
		if h == "-" {
			continue
		}
		suits := strings.Split(h, ".")
		if len(suits) != 4 {
			return engine.DealHands{}, fmt.Errorf("bad hand %q", h)
		}
		for j, ranks := range suits {
			for _, r := range ranks {
				rank, err := engine.ParseRank(strings.ToUpper(string(r)))
				if err != nil {
					return engine.DealHands{}, fmt.Errorf("bad hand %q: %w", h, err)
				}
				out = append(out, engine.DealtCard{Seat: seat.Offset(i), Card: engine.Card{Suit: order[j], Rank: rank}})
			}
		}
	}
	return engine.DealHands{Cards: out}, nil
}

// Calls turns the auction tokens into calls, rotating seats from the
// Auction tag's seat. Annotations are skipped, "AP" closes the auction
// with the passes it stands for, and any other unreadable token is an
// error.
func (b Board) Calls() ([]engine.Action, error) {
	t, err := b.tag(TagAuction)
	if err != nil {
		return nil, err
	}
	seat, err := engine.ParseSeat(t.Value)
	if err != nil {
		return nil, err
	}
	var (
		out      []engine.Action
		bid      bool
		trailing int
	)
	add := func(c engine.Call) {
		out = append(out, engine.MakeCall{Seat: seat, Call: c})
		seat = seat.Next()
		if c.IsBid() {
			bid, trailing = true, 0
		} else if c.Kind == engine.CallPass {
			trailing++
		} else {
			trailing = 0
		}
	}
	for i, tok := range t.Tokens {
		if strings.EqualFold(tok, "AP") {
			need := 3 - trailing
			if !bid {
				need = 4 - len(out)
			}
			for ; need > 0; need-- {
				add(engine.Pass())
			}
			continue
		}
		if annotation(tok) {
			continue
		}
		c, err := engine.ParseCall(strings.TrimRight(tok, "!?"))
		if err != nil {
			return nil, fmt.Errorf("auction token %d: %w", i, err)
		}
		add(c)
	}
	return out, nil
}

// PlayRows groups the play tokens into rows of four plays. PBN lists each
// trick in seat order starting from the Play tag's seat, not from the
// trick's leader, so rows must be resequenced by whoever replays them.
// Reading stops at "*"; a short final row is kept. Annotations are
// dropped and any other token that is not a card is an error.
func (b Board) PlayRows() ([][]engine.PlayCard, error) {
	t, err := b.tag(TagPlay)
	if err != nil {
		return nil, err
	}
	first, err := engine.ParseSeat(t.Value)
	if err != nil {
		return nil, err
	}
	var (
		rows [][]engine.PlayCard
		row  []engine.PlayCard
	)
	for i, tok := range t.Tokens {
		if tok == "*" {
			break
		}
		if annotation(tok) {
			continue
		}
		c, err := engine.ParseCard(strings.TrimRight(tok, "!?"))
		if err != nil {
			return nil, fmt.Errorf("play token %d: %w", i, err)
		}
		row = append(row, engine.PlayCard{Seat: first.Offset(len(row)), Card: c})
		if len(row) == 4 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows, nil
}

// annotation reports whether tok is PBN commentary rather than a move:
// a note reference "=1=", a NAG "$3", a "{comment}" or a bare "!" / "?".
func annotation(tok string) bool {
	if tok == "" {
		return true
	}
	switch tok[0] {
	case '=', '$', '{', '!', '?':
		return true
	}
	return false
}

// Expected is what the record says happened.
type Expected struct {
	Declarer string `json:"declarer"`
	Contract string `json:"contract"`
	Result   *int   `json:"result,omitempty"`
	Score    string `json:"score,omitempty"`
}

func (b Board) Expected() Expected {
	e := Expected{
		Declarer: b.Tags[TagDeclarer].Value,
		Contract: b.Tags[TagContract].Value,
		Score:    b.Tags[TagScore].Value,
	}
	if v, err := strconv.Atoi(strings.TrimSpace(b.Tags[TagResult].Value)); err == nil {
		e.Result = &v
	}
	return e
}
