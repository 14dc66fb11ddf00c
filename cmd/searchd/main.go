package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"seedscout.gg/internal/filter"
	"seedscout.gg/internal/persistence/indexdb"
	"seedscout.gg/internal/persistence/seedlog"
	"seedscout.gg/internal/searchctl"
	"seedscout.gg/internal/session"
	"seedscout.gg/internal/transport/ws"
	"seedscout.gg/internal/tuning"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: ./configs/tuning.yaml)")
		sessPath   = flag.String("session", "", "session file to load (default: <data>/session.save if present)")
		threads    = flag.Int("threads", 0, "worker threads override (0 = session/hardware default)")
		disableDB  = flag.Bool("disable_db", false, "disable the run/result index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[searchd] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join("configs", "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		tune = tuning.Default()
	}

	_ = os.MkdirAll(*dataDir, 0o755)

	ctl := searchctl.New(logger)

	// Session auto-load is quiet: a missing file just starts fresh.
	sp := strings.TrimSpace(*sessPath)
	quiet := sp == ""
	if sp == "" {
		sp = filepath.Join(*dataDir, "session.save")
	}
	if sess, err := session.Load(sp, quiet); err != nil {
		if errors.Is(err, session.ErrNewerVersion) {
			logger.Printf("warning: %s was written by a newer version", sp)
		} else {
			logger.Fatalf("load session: %v", err)
		}
	} else if sess != nil {
		if *threads > 0 {
			sess.Search.Threads = *threads
		}
		if err := ctl.SetSession(sess); err != nil {
			logger.Fatalf("set session: %v", err)
		}
		logger.Printf("loaded session %s (mc %s, %d conditions, %d results)",
			sp, filter.MCString(sess.MC), len(sess.Conds), len(sess.Results))
	}

	// Optional read-model index; does not affect search determinism.
	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
	}

	hits := seedlog.NewHitLogger(*dataDir)
	defer hits.Close()
	prog := seedlog.NewProgressLogger(*dataDir)
	defer prog.Close()

	go recordEvents(ctl, idx, hits, prog, tune.ProgressEveryItems, logger)

	wsrv := ws.NewServer(ctl, logger)
	wsrv.RunOptions = searchctl.Options{
		ItemSize:      tune.SeedsPerItem,
		QueueSize:     tune.QueueSize,
		MaxResults:    tune.MaxResults,
		AutosavePath:  filepath.Join(*dataDir, "session.save"),
		AutosaveCycle: tune.AutosaveCycle,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", wsrv.Handler())
	mux.HandleFunc("/v1/status", func(w http.ResponseWriter, r *http.Request) {
		snap := ctl.Session()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"running":    ctl.Running(),
			"mc":         filter.MCString(snap.MC),
			"conditions": len(snap.Conds),
			"results":    len(snap.Results),
			"cursor":     snap.Search.StartSeed,
		})
	})

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Printf("shutting down")

	ctl.Stop()
	ctl.Wait()
	if ok, _ := session.Save(filepath.Join(*dataDir, "session.save"), ctl.Session(), true); !ok {
		logger.Printf("final session save failed")
	}
	_ = srv.Close()
}

// recordEvents fans controller events into the index and the seed logs.
func recordEvents(ctl *searchctl.Controller, idx *indexdb.SQLiteIndex, hits *seedlog.HitLogger, prog *seedlog.ProgressLogger, progressEvery int, logger *log.Logger) {
	sub := ctl.Subscribe()
	defer sub.Close()

	runID := newRunID()
	if idx != nil {
		snap := ctl.Session()
		idx.RecordRun(indexdb.RunRow{
			RunID:       runID,
			StartedAt:   time.Now().UTC().Format(time.RFC3339),
			MC:          filter.MCString(snap.MC),
			Mode:        snap.Search.Mode,
			Threads:     snap.Search.Threads,
			CondsDigest: condsDigest(snap),
		})
	}

	var sinceCheckpoint int
	for e := range sub.C {
		switch ev := e.(type) {
		case searchctl.ResultsEvent:
			now := time.Now().UTC().Format(time.RFC3339)
			for _, seed := range ev.Seeds {
				if idx != nil {
					idx.RecordResult(runID, seed)
				}
				_ = hits.WriteHit(seedlog.HitEntry{RunID: runID, Seed: seed, Time: now})
			}
		case searchctl.ProgressEvent:
			sinceCheckpoint++
			if sinceCheckpoint >= progressEvery {
				sinceCheckpoint = 0
				if idx != nil {
					idx.RecordProgress(runID, ev.Seed, ev.Done, ev.Total)
				}
				_ = prog.WriteProgress(seedlog.ProgressEntry{
					RunID: runID, Cursor: ev.Seed, Done: ev.Done, Total: ev.Total,
					Time: time.Now().UTC().Format(time.RFC3339),
				})
			}
		case searchctl.FinishedEvent:
			if idx != nil {
				idx.RecordFinished(runID, ev.Complete)
			}
			logger.Printf("search finished (complete=%v, cap=%v)", ev.Complete, ev.CapReached)
			runID = newRunID()
		}
	}
}

func newRunID() string {
	return fmt.Sprintf("run_%d", time.Now().UnixNano())
}

func condsDigest(s *session.Session) string {
	h := sha256.New()
	for i := range s.Conds {
		raw, err := s.Conds[i].MarshalBinary()
		if err != nil {
			continue
		}
		h.Write(raw)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
