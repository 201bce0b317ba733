package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bridgebench/server/record"
)

func jsonl(t *testing.T, boards ...record.Board) string {
	t.Helper()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, b := range boards {
		if err := enc.Encode(map[string]string{"type": "game"}); err != nil {
			t.Fatal(err)
		}
		for _, tg := range b.Tags {
			line := struct {
				Type string `json:"type"`
				record.Tag
			}{"tag", tg}
			if err := enc.Encode(line); err != nil {
				t.Fatal(err)
			}
		}
	}
	return buf.String()
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func badScore() record.Board {
	b := grandSlam()
	b.Tags[record.TagScore] = tag(record.TagScore, "NS 1500")
	return b
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jsonl", jsonl(t, grandSlam(), grandSlam()))
	writeFile(t, dir, "b.jsonl", jsonl(t, badScore()))
	writeFile(t, dir, "notes.txt", "ignored")

	rep, err := Run(context.Background(), Options{Dir: dir, Workers: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Files) != 2 || rep.Stopped {
		t.Fatalf("files = %v, stopped %v", rep.Files, rep.Stopped)
	}
	if rep.Stats.Boards != 3 || rep.Stats.Passed != 2 {
		t.Fatalf("stats = %+v", rep.Stats)
	}
	// outcomes keep file and board order
	for i, want := range []struct {
		file  string
		index int
	}{{"a.jsonl", 0}, {"a.jsonl", 1}, {"b.jsonl", 0}} {
		o := rep.Outcomes[i]
		if o.File != want.file || o.Index != want.index {
			t.Fatalf("outcome %d = %s #%d", i, o.File, o.Index)
		}
	}
	if rep.Outcomes[2].OK() {
		t.Fatalf("bad score passed")
	}

	var buf bytes.Buffer
	rep.Stats.WriteSummary(&buf, -1)
	out := buf.String()
	for _, want := range []string{"boards:    3", "failed:    1", KindScore, "b.jsonl #0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRunFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "club.jsonl", jsonl(t, grandSlam()))
	writeFile(t, dir, "teams.jsonl", jsonl(t, badScore()))

	rep, err := Run(context.Background(), Options{Dir: dir, Filter: "club"})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Stats.Boards != 1 || rep.Stats.Failures() != 0 {
		t.Fatalf("stats = %+v", rep.Stats)
	}

	if _, err := Run(context.Background(), Options{Dir: dir, Filter: "pairs"}); !errors.Is(err, ErrNoFiles) {
		t.Fatalf("no matches: %v", err)
	}
	if _, err := Run(context.Background(), Options{Dir: filepath.Join(dir, "missing")}); err == nil {
		t.Fatalf("missing dir accepted")
	}
}

func TestRunBoardsFailFast(t *testing.T) {
	boards := []record.Board{badScore()}
	for i := 0; i < 20; i++ {
		b := grandSlam()
		b.Index = i + 1
		boards = append(boards, b)
	}
	rep, err := RunBoards(context.Background(), boards, 1, true)
	if err != nil {
		t.Fatalf("fail fast is not a cancellation: %v", err)
	}
	if len(rep.Outcomes) == 0 || rep.Outcomes[0].OK() || rep.Stats.Failures() != 1 {
		t.Fatalf("first failure missing: %+v", rep.Stats)
	}
}

func TestRunBoardsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	boards := make([]record.Board, 50)
	for i := range boards {
		boards[i] = grandSlam()
	}
	rep, err := RunBoards(ctx, boards, 2, false)
	if rep.Stopped && !errors.Is(err, context.Canceled) {
		t.Fatalf("stopped run returned %v", err)
	}
	if !rep.Stopped && err != nil {
		t.Fatalf("complete run returned %v", err)
	}
}
