package session

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"seedscout.gg/internal/filter"
	"seedscout.gg/internal/gen48"
	"seedscout.gg/internal/scheduler"
)

func sampleSession() *Session {
	return &Session{
		MC: filter.MC1_16,
		Search: scheduler.SearchConfig{
			Mode:         scheduler.ModeFamilyBlocks,
			StartSeed:    -7594379543,
			Threads:      8,
			StopOnResult: true,
		},
		Gen48: gen48.Settings{
			Mode: gen48.ModeQuad, Qual: 2, QMArea: 95, Salt: 14357620,
			ManualArea: true, X1: -3, Z1: -3, X2: 2, Z2: 2,
		},
		Conds: []filter.Condition{
			{Type: filter.FQhNormal, Save: 1, X1: -1, Z1: -1, X2: 0, Z2: 0},
			{Type: filter.FBiome, Save: 2, Relative: 1, X1: -64, Z1: -64, X2: 64, Z2: 64,
				BiomeFind: 1 << 14, BiomeExcl: 1 << 2},
			{Type: filter.FTemps, Save: 3, X1: 0, Z1: 0, X2: 1, Z2: 1,
				Temps: [9]int32{1, 0, 1, 0, 0, 0, 0, 0, 0}},
		},
		Results: []int64{
			1, -1, 42, -7594379543, 1234567890123456789, -1234567890123456789,
			2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12,
		},
	}
}

func TestSession_RoundTrip(t *testing.T) {
	s := sampleSession()

	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.MC != s.MC {
		t.Fatalf("mc %d, want %d", got.MC, s.MC)
	}
	if got.Search != s.Search {
		t.Fatalf("search config:\ngot  %+v\nwant %+v", got.Search, s.Search)
	}
	if got.Gen48 != s.Gen48 {
		t.Fatalf("gen48 settings:\ngot  %+v\nwant %+v", got.Gen48, s.Gen48)
	}
	if len(got.Conds) != len(s.Conds) {
		t.Fatalf("%d conditions, want %d", len(got.Conds), len(s.Conds))
	}
	for i := range s.Conds {
		if got.Conds[i] != s.Conds[i] {
			t.Fatalf("condition %d:\ngot  %+v\nwant %+v", i, got.Conds[i], s.Conds[i])
		}
	}
	if len(got.Results) != len(s.Results) {
		t.Fatalf("%d results, want %d", len(got.Results), len(s.Results))
	}
	for i := range s.Results {
		if got.Results[i] != s.Results[i] {
			t.Fatalf("result %d: %d, want %d", i, got.Results[i], s.Results[i])
		}
	}
}

func TestSession_ListPathsPersist(t *testing.T) {
	s := &Session{
		MC:     filter.MC1_16,
		Search: scheduler.SearchConfig{Mode: scheduler.ModeList, SeedListPath: "/tmp/seeds.txt", Threads: 2},
		Gen48:  gen48.Settings{Mode: gen48.ModeList48, List48Path: "/tmp/list48.txt", Qual: 3, QMArea: 90},
	}
	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Search.SeedListPath != s.Search.SeedListPath {
		t.Fatalf("list64 path %q", got.Search.SeedListPath)
	}
	if got.Gen48.List48Path != s.Gen48.List48Path {
		t.Fatalf("list48 path %q", got.Gen48.List48Path)
	}
}

func TestRead_UnknownKeysIgnored(t *testing.T) {
	in := "#Version:  1.0.0\n#MC:       1.16\n#Frobnicate: yes\n#Threads:  3\n"
	s, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if s.Search.Threads != 3 {
		t.Fatalf("threads %d, want 3", s.Search.Threads)
	}
}

func TestRead_EmptyLineTerminates(t *testing.T) {
	in := "#Version:  1.0.0\n#Threads:  3\n\n#Threads:  9\n123\n"
	s, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if s.Search.Threads != 3 || len(s.Results) != 0 {
		t.Fatalf("parsing continued past the empty line: %+v", s)
	}
}

func TestRead_MissingVersionRejected(t *testing.T) {
	if _, err := Read(strings.NewReader("#Threads:  3\n")); err == nil {
		t.Fatalf("missing version header must be rejected")
	}
	if _, err := Read(strings.NewReader("")); err == nil {
		t.Fatalf("empty input must be rejected")
	}
}

func TestRead_NewerVersionWarns(t *testing.T) {
	in := "#Version:  99.0.0\n#Threads:  5\n"
	s, err := Read(strings.NewReader(in))
	if !errors.Is(err, ErrNewerVersion) {
		t.Fatalf("err %v, want ErrNewerVersion", err)
	}
	if s == nil || s.Search.Threads != 5 {
		t.Fatalf("newer-version session should still parse")
	}
}

func TestRead_BadCondHexRejected(t *testing.T) {
	// Truncated condition record: valid hex, wrong length.
	in := "#Version:  1.0.0\n#Cond:     deadbeef\n"
	if _, err := Read(strings.NewReader(in)); err == nil {
		t.Fatalf("wrong-size condition record must reject the load")
	}

	in = "#Version:  1.0.0\n#Cond:     zzzz\n"
	if _, err := Read(strings.NewReader(in)); err == nil {
		t.Fatalf("non-hex condition record must reject the load")
	}
}

func TestRead_Gen48AreaImpliesManual(t *testing.T) {
	in := "#Version:  1.0.0\n#Gen48X1:  -5\n"
	s, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !s.Gen48.ManualArea || s.Gen48.X1 != -5 {
		t.Fatalf("any Gen48 bound should imply a manual area: %+v", s.Gen48)
	}
}

func TestSaveLoad_Quiet(t *testing.T) {
	// A quiet save to an unwritable path reports false without an error.
	ok, err := Save("/nonexistent-dir/session.save", sampleSession(), true)
	if ok || err != nil {
		t.Fatalf("quiet save: ok=%v err=%v", ok, err)
	}
	s, err := Load("/nonexistent-dir/session.save", true)
	if s != nil || err != nil {
		t.Fatalf("quiet load: s=%v err=%v", s, err)
	}
	if _, err := Load("/nonexistent-dir/session.save", false); err == nil {
		t.Fatalf("loud load of a missing file must error")
	}
}
