// Command seedsearch runs a session file headlessly: load, search, print
// hits, save the session back with the final cursor.
package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"seedscout.gg/internal/filter"
	"seedscout.gg/internal/results"
	"seedscout.gg/internal/searchctl"
	"seedscout.gg/internal/session"
	"seedscout.gg/internal/tuning"
)

func main() {
	var (
		sessPath   = flag.String("session", "session.save", "session file to run")
		outPath    = flag.String("out", "", "write the finished session here (default: overwrite input)")
		exportPath = flag.String("export", "", "also export results as a seed list")
		threads    = flag.Int("threads", 0, "worker threads override")
		maxResults = flag.Int("max_results", 0, "result cap override")
		limit      = flag.Duration("limit", 0, "stop after this wall time (0 = run to completion)")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[seedsearch] ", log.LstdFlags)

	sess, err := session.Load(*sessPath, false)
	if err != nil {
		if errors.Is(err, session.ErrNewerVersion) {
			logger.Printf("warning: session was written by a newer version")
		} else {
			logger.Fatalf("load session: %v", err)
		}
	}
	if *threads > 0 {
		sess.Search.Threads = *threads
	}

	tune := tuning.Default()
	if *maxResults > 0 {
		tune.MaxResults = *maxResults
	}

	ctl := searchctl.New(logger)
	if err := ctl.SetSession(sess); err != nil {
		logger.Fatalf("set session: %v", err)
	}

	sub := ctl.Subscribe()
	go func() {
		defer sub.Close()
		for e := range sub.C {
			switch ev := e.(type) {
			case searchctl.ResultsEvent:
				for _, seed := range ev.Seeds {
					logger.Printf("hit %s", results.Format(seed))
				}
			case searchctl.FinishedEvent:
				return
			}
		}
	}()

	opts := searchctl.Options{
		ItemSize:   tune.SeedsPerItem,
		QueueSize:  tune.QueueSize,
		MaxResults: tune.MaxResults,
	}
	if err := ctl.Start(opts); err != nil {
		logger.Fatalf("start: %v", err)
	}

	if *limit > 0 {
		t := time.AfterFunc(*limit, ctl.Stop)
		defer t.Stop()
	}
	ctl.Wait()

	final := ctl.Session()
	logger.Printf("done: %d results, cursor %d (mc %s)",
		len(final.Results), final.Search.StartSeed, filter.MCString(final.MC))

	out := *outPath
	if out == "" {
		out = *sessPath
	}
	if _, err := session.Save(out, final, false); err != nil {
		logger.Fatalf("save session: %v", err)
	}
	if *exportPath != "" {
		sink := results.NewSink(len(final.Results) + 1)
		sink.Add(final.Results)
		if err := sink.Export(*exportPath); err != nil {
			logger.Fatalf("export: %v", err)
		}
	}
}
