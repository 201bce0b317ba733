package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"bridgebench/server/replay"
	"bridgebench/server/store"
)

//
// ===== pretty printing =====
//

var useColor bool

const (
	colReset  = "\033[0m"
	colBold   = "\033[1m"
	colDim    = "\033[2m"
	colGreen  = "\033[32m"
	colRed    = "\033[31m"
	colYellow = "\033[33m"
)

func c(code, s string) string {
	if !useColor {
		return s
	}
	return code + s + colReset
}
func bold(s string) string { return c(colBold, s) }
func dim(s string) string  { return c(colDim, s) }
func good(s string) string { return c(colGreen, s) }
func warn(s string) string { return c(colYellow, s) }
func bad(s string) string  { return c(colRed, s) }
func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s %s %s\n", dim("──"), bold(title), dim("──"))
}

//
// ===== bootstrap =====
//

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	_ = godotenv.Load()

	cfg := loadConfig()
	useColor = cfg.Color

	var migrate, runReplay bool
	args := os.Args[1:]
	for i, a := range args {
		switch a {
		case "--migrate":
			migrate = true
		case "--replay":
			runReplay = true
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "--") {
				cfg.DataDir = args[i+1]
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchSignals(cancel)

	var db *store.DB
	if cfg.DatabaseURL != "" {
		p, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			if migrate {
				log.Fatal(err)
			}
			log.Printf("DB disabled (open failed): %v", err)
		} else {
			db = p
			defer db.Close(context.Background())
		}
	} else if migrate {
		log.Fatal("Missing required env var DATABASE_URL. Put it in .env (dev) or set it on the host (prod).")
	}

	if db != nil && (migrate || cfg.AutoMigrate) {
		if err := store.Migrate(ctx, db); err != nil {
			if migrate {
				log.Fatal(err)
			}
			log.Printf("migrate failed (continuing without DB): %v", err)
			db = nil
		} else {
			log.Println("migrated")
		}
	}
	if migrate {
		return
	}

	if runReplay {
		failed, err := replayDir(ctx, cfg, db, os.Stdout)
		if err != nil {
			log.Printf("replay: %v", err)
			if db != nil {
				db.Close(context.Background())
			}
			os.Exit(2)
		}
		if failed > 0 {
			if db != nil {
				db.Close(context.Background())
			}
			os.Exit(1)
		}
		return
	}

	var rs runStore
	if db != nil {
		rs = db
	}
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: Router(rs, cfg.Workers), ReadTimeout: 15 * time.Second, WriteTimeout: 60 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		_ = srv.Shutdown(sctx)
	}()
	log.Printf("listening on http://localhost:%s (Ctrl+C to stop)", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func watchSignals(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
	cancel()
}

//
// ===== replay =====
//

// replayDir validates every record file in cfg.DataDir, prints the
// summary and stores the run when a database is available. It returns
// the number of failed boards.
func replayDir(ctx context.Context, cfg config, db *store.DB, w io.Writer) (int, error) {
	start := time.Now()
	rep, err := replay.Run(ctx, replay.Options{
		Dir:      cfg.DataDir,
		Filter:   cfg.Filter,
		Workers:  cfg.Workers,
		FailFast: cfg.FailFast,
		Verbose:  cfg.Verbose,
	})
	if err != nil && rep == nil {
		return 0, err
	}
	printReport(w, rep, time.Since(start), cfg.Verbose)

	if db != nil {
		if perr := saveRun(ctx, db, cfg, rep); perr != nil {
			log.Printf("store run: %v", perr)
		}
	}
	return rep.Stats.Failures(), err
}

func printReport(w io.Writer, rep *replay.Report, took time.Duration, verbose bool) {
	section(w, fmt.Sprintf("replay: %d files", len(rep.Files)))
	maxFailures := 20
	if verbose {
		maxFailures = -1
	}
	rep.Stats.WriteSummary(w, maxFailures)
	verdict := good("PASS")
	switch {
	case rep.Stats.Failures() > 0:
		verdict = bad("FAIL")
	case rep.Stopped:
		verdict = warn("STOPPED")
	}
	fmt.Fprintf(w, "%s %s\n", verdict, dim(took.Round(time.Millisecond).String()))
}

func saveRun(ctx context.Context, db *store.DB, cfg config, rep *replay.Report) error {
	id, err := db.CreateRun(ctx, cfg.DataDir, cfg.Filter)
	if err != nil {
		return err
	}
	if err := db.InsertBoardResults(ctx, id, boardRows(rep.Outcomes)); err != nil {
		return err
	}
	if err := db.CompleteRun(ctx, id, store.RunTotals{
		Boards: rep.Stats.Boards,
		Passed: rep.Stats.Passed,
		Failed: rep.Stats.Failures(),
		Kinds:  rep.Stats.Kinds,
	}); err != nil {
		return err
	}
	log.Printf("stored run %s", id)
	return nil
}

func boardRows(outcomes []replay.Outcome) []store.BoardRow {
	rows := make([]store.BoardRow, 0, len(outcomes))
	for _, o := range outcomes {
		row := store.BoardRow{
			File:             o.File,
			Index:            o.Index,
			OK:               o.OK(),
			Declarer:         o.Declarer,
			Contract:         o.Contract,
			Result:           o.Result,
			Score:            o.Score,
			ExpectedDeclarer: o.Expected.Declarer,
			ExpectedContract: o.Expected.Contract,
			ExpectedResult:   o.Expected.Result,
			ExpectedScore:    o.Expected.Score,
		}
		for _, f := range o.Errors {
			row.Errors = append(row.Errors, f.String())
		}
		rows = append(rows, row)
	}
	return rows
}
