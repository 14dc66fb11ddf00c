// Package session reads and writes the text session format: a search's
// configuration, condition list, and partial results.
package session

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"seedscout.gg/internal/filter"
	"seedscout.gg/internal/gen48"
	"seedscout.gg/internal/scheduler"
)

// Application version written into session headers.
const (
	VersMajor = 1
	VersMinor = 2
	VersPatch = 0
)

// ErrNewerVersion marks a session written by a newer application. Parsing
// still succeeds; the caller decides whether to warn.
var ErrNewerVersion = errors.New("session was written by a newer version")

// Session is the persisted state of one search.
type Session struct {
	MC     int
	Search scheduler.SearchConfig
	Gen48  gen48.Settings
	Conds  []filter.Condition
	Results []int64
}

// Write emits the session in the line-oriented `#Key: value` format,
// followed by one decimal result seed per line.
func Write(w io.Writer, s *Session) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "#Version:  %d.%d.%d\n", VersMajor, VersMinor, VersPatch)
	fmt.Fprintf(bw, "#Time:     %s\n", time.Now().Format("Mon Jan 2 15:04:05 2006"))
	fmt.Fprintf(bw, "#MC:       %s\n", filter.MCString(s.MC))
	fmt.Fprintf(bw, "#Search:   %d\n", s.Search.Mode)
	if s.Search.Mode == scheduler.ModeList {
		fmt.Fprintf(bw, "#List64:   %s\n", strings.ReplaceAll(s.Search.SeedListPath, "\n", ""))
	}
	fmt.Fprintf(bw, "#Progress: %d\n", s.Search.StartSeed)
	fmt.Fprintf(bw, "#Threads:  %d\n", s.Search.Threads)
	fmt.Fprintf(bw, "#ResStop:  %d\n", b2i(s.Search.StopOnResult))
	fmt.Fprintf(bw, "#Mode48:   %d\n", s.Gen48.Mode)
	if s.Gen48.Mode == gen48.ModeList48 {
		fmt.Fprintf(bw, "#List48:   %s\n", strings.ReplaceAll(s.Gen48.List48Path, "\n", ""))
	}
	fmt.Fprintf(bw, "#HutQual:  %d\n", s.Gen48.Qual)
	fmt.Fprintf(bw, "#MonArea:  %d\n", s.Gen48.QMArea)
	if s.Gen48.Salt != 0 {
		fmt.Fprintf(bw, "#Salt:     %d\n", s.Gen48.Salt)
	}
	if s.Gen48.ManualArea {
		fmt.Fprintf(bw, "#Gen48X1:  %d\n", s.Gen48.X1)
		fmt.Fprintf(bw, "#Gen48Z1:  %d\n", s.Gen48.Z1)
		fmt.Fprintf(bw, "#Gen48X2:  %d\n", s.Gen48.X2)
		fmt.Fprintf(bw, "#Gen48Z2:  %d\n", s.Gen48.Z2)
	}
	for i := range s.Conds {
		raw, err := s.Conds[i].MarshalBinary()
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "#Cond:     %s\n", hex.EncodeToString(raw))
	}
	for _, seed := range s.Results {
		fmt.Fprintf(bw, "%d\n", seed)
	}
	return bw.Flush()
}

// Read parses a session. The whole load is rejected on the first malformed
// record, leaving the caller's state untouched. Unknown `#Key` lines are
// ignored for forward compatibility; an empty line terminates parsing.
//
// A file written by a newer major version parses normally but returns the
// session alongside ErrNewerVersion.
func Read(r io.Reader) (*Session, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return nil, fmt.Errorf("empty session")
	}
	var major, minor, patch int
	if _, err := fmt.Sscanf(sc.Text(), "#Version: %d.%d.%d", &major, &minor, &patch); err != nil {
		return nil, fmt.Errorf("missing #Version header")
	}

	s := &Session{
		Search: scheduler.SearchConfig{Threads: 0},
		Gen48:  gen48.DefaultSettings(),
	}
	s.Gen48.Mode = gen48.ModeAuto

	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		if !strings.HasPrefix(line, "#") {
			seed, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("bad result seed %q", line)
			}
			s.Results = append(s.Results, seed)
			continue
		}
		if err := s.parseHeader(line); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if major > VersMajor {
		return s, ErrNewerVersion
	}
	return s, nil
}

func (s *Session) parseHeader(line string) error {
	key, val, ok := strings.Cut(line, ":")
	if !ok {
		return nil
	}
	val = strings.TrimSpace(val)

	switch key {
	case "#Time":
		// Informational only.
	case "#MC":
		mc, ok := filter.ParseMC(val)
		if !ok {
			return fmt.Errorf("unknown MC version %q", val)
		}
		s.MC = mc
	case "#Search":
		return parseInt(val, &s.Search.Mode)
	case "#List64":
		s.Search.SeedListPath = val
	case "#Progress":
		return parseInt64(val, &s.Search.StartSeed)
	case "#Threads":
		return parseInt(val, &s.Search.Threads)
	case "#ResStop":
		var v int
		if err := parseInt(val, &v); err != nil {
			return err
		}
		s.Search.StopOnResult = v != 0
	case "#Mode48":
		return parseInt(val, &s.Gen48.Mode)
	case "#List48":
		s.Gen48.List48Path = val
	case "#HutQual":
		return parseInt(val, &s.Gen48.Qual)
	case "#MonArea":
		return parseInt(val, &s.Gen48.QMArea)
	case "#Salt":
		return parseInt64(val, &s.Gen48.Salt)
	case "#Gen48X1":
		s.Gen48.ManualArea = true
		return parseInt32(val, &s.Gen48.X1)
	case "#Gen48Z1":
		s.Gen48.ManualArea = true
		return parseInt32(val, &s.Gen48.Z1)
	case "#Gen48X2":
		s.Gen48.ManualArea = true
		return parseInt32(val, &s.Gen48.X2)
	case "#Gen48Z2":
		s.Gen48.ManualArea = true
		return parseInt32(val, &s.Gen48.Z2)
	case "#Cond":
		raw, err := hex.DecodeString(val)
		if err != nil {
			return fmt.Errorf("bad condition hex: %w", err)
		}
		var c filter.Condition
		if err := c.UnmarshalBinary(raw); err != nil {
			return err
		}
		s.Conds = append(s.Conds, c)
	default:
		// Unknown keys are ignored.
	}
	return nil
}

func parseInt(s string, out *int) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("bad integer %q", s)
	}
	*out = v
	return nil
}

func parseInt32(s string, out *int32) error {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return fmt.Errorf("bad integer %q", s)
	}
	*out = int32(v)
	return nil
}

func parseInt64(s string, out *int64) error {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("bad integer %q", s)
	}
	*out = v
	return nil
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Save writes the session to a file. With quiet set, IO errors are
// swallowed and false returned, for auto-save paths.
func Save(path string, s *Session, quiet bool) (bool, error) {
	f, err := os.Create(path)
	if err != nil {
		if quiet {
			return false, nil
		}
		return false, err
	}
	werr := Write(f, s)
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil && quiet {
		return false, nil
	}
	return werr == nil, werr
}

// Load reads a session file. With quiet set, IO errors are swallowed and a
// nil session returned, for auto-load paths. Parse errors are never quiet.
func Load(path string, quiet bool) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		if quiet {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
