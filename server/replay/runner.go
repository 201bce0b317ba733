package replay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"bridgebench/server/record"
)

var ErrNoFiles = errors.New("no record files")

type Options struct {
	Dir      string
	Filter   string // substring a file name must contain
	Workers  int    // <= 0 means one per CPU
	FailFast bool
	Verbose  bool
}

// Report is the result of a run. Outcomes are in file then board order;
// boards skipped after a fail-fast stop or a cancellation are absent.
type Report struct {
	Files    []string
	Outcomes []Outcome
	Stats    *Stats
	Stopped  bool
}

// ListFiles returns the *.jsonl files in dir whose name contains filter,
// sorted by name.
func ListFiles(dir, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".jsonl") || !strings.Contains(name, filter) {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w in %s (filter %q)", ErrNoFiles, dir, filter)
	}
	return out, nil
}

// Run decodes every matching file in opts.Dir and replays its boards.
func Run(ctx context.Context, opts Options) (*Report, error) {
	files, err := ListFiles(opts.Dir, opts.Filter)
	if err != nil {
		return nil, err
	}
	var boards []record.Board
	for _, f := range files {
		bs, err := record.ReadFile(f)
		if err != nil {
			return nil, err
		}
		if opts.Verbose {
			log.Printf("replay: %s: %d boards", filepath.Base(f), len(bs))
		}
		boards = append(boards, bs...)
	}
	rep, err := RunBoards(ctx, boards, opts.Workers, opts.FailFast)
	if rep != nil {
		rep.Files = files
	}
	return rep, err
}

type result struct {
	index   int
	outcome Outcome
}

// RunBoards replays boards on a worker pool. With failFast the pool stops
// handing out boards once one fails. The returned error is the context's
// when ctx ends before every board ran.
func RunBoards(ctx context.Context, boards []record.Board, workers int, failFast bool) (*Report, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(boards) {
		workers = len(boards)
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	tasks := make(chan int)
	results := make(chan result, len(boards))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tasks {
				results <- result{index: idx, outcome: Board(boards[idx])}
			}
		}()
	}

	go func() {
		defer close(tasks)
		for i := range boards {
			select {
			case <-runCtx.Done():
				return
			case tasks <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	done := make([]*Outcome, len(boards))
	n := 0
	for r := range results {
		o := r.outcome
		done[r.index] = &o
		n++
		if failFast && !o.OK() {
			cancel()
		}
	}

	rep := &Report{Stats: NewStats(), Stopped: n < len(boards)}
	for _, o := range done {
		if o == nil {
			continue
		}
		rep.Outcomes = append(rep.Outcomes, *o)
		rep.Stats.Add(*o)
	}
	if rep.Stopped {
		return rep, ctx.Err()
	}
	return rep, nil
}
