package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/monetlab/monet/internal/domain"
)

func TestOutputRoot(t *testing.T) {
	got := OutputRoot(filepath.Join("data", "experiment1") + string(filepath.Separator))
	want := filepath.Join("data", "MoNet_experiment1")
	if got != want {
		t.Errorf("OutputRoot() = %q, want %q", got, want)
	}
}

func TestWriter_OutputPath(t *testing.T) {
	w := NewWriter("/out")
	got := w.OutputPath(filepath.Join("day1", "cells.csv"), domain.FilterBrownian)
	want := filepath.Join("/out", "day1", "cells_Brownian.csv")
	if got != want {
		t.Errorf("OutputPath() = %q, want %q", got, want)
	}
}

func TestWriter_Write_RoundTrip(t *testing.T) {
	input := "\xEF\xBB\xBF Track ID ;Frame;x;y;note\r\n" +
		"7;0;1.50;2.0;\"a;b\"\r\n" +
		"8;0;3;4;keep\r\n" +
		"7;1;1.75;2.5;\r\n" +
		";0;9;9;orphan\r\n" +
		"9;0;5;6;drop"

	raw, err := ParseRawFile([]byte(input))
	if err != nil {
		t.Fatalf("ParseRawFile() error = %v", err)
	}
	raw.RelPath = filepath.Join("sub", "a.csv")

	root := t.TempDir()
	w := NewWriter(root)
	kept := map[string]struct{}{"7": {}, "8": {}}

	path, written, err := w.Write(raw, 0, kept, domain.FilterAll)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !written {
		t.Fatal("Write() written = false, want true")
	}
	if path != filepath.Join(root, "sub", "a_All.csv") {
		t.Errorf("path = %q", path)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "\xEF\xBB\xBF Track ID ;Frame;x;y;note\r\n" +
		"7;0;1.50;2.0;\"a;b\"\r\n" +
		"8;0;3;4;keep\r\n" +
		"7;1;1.75;2.5;\r\n"
	if string(got) != want {
		t.Errorf("output mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestWriter_Write_NothingKept(t *testing.T) {
	raw, err := ParseRawFile([]byte("Track,Frame,x,y\n1,0,1,1\n"))
	if err != nil {
		t.Fatal(err)
	}
	raw.RelPath = "a.csv"

	root := t.TempDir()
	w := NewWriter(root)

	path, written, err := w.Write(raw, 0, map[string]struct{}{"2": {}}, domain.FilterCTRW)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if written || path != "" {
		t.Errorf("Write() = (%q, %v), want nothing written", path, written)
	}
	entries, _ := os.ReadDir(root)
	if len(entries) != 0 {
		t.Errorf("output root has %d entries, want 0", len(entries))
	}
}

func TestWriteRunInfo(t *testing.T) {
	root := t.TempDir()
	run := domain.BatchRun{
		ID:         "run-1",
		InputRoot:  "/data/in",
		OutputRoot: root,
		Filter:     domain.FilterFBM,
		Classifier: "msd",
	}
	if err := WriteRunInfo(run); err != nil {
		t.Fatalf("WriteRunInfo() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, RunInfoFileName))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Source: /data/in\n", "Filter: FBM\n", "Model: msd\n", "Run: run-1\n"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("run info missing %q:\n%s", want, data)
		}
	}
}
