package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDigestAndAnalyse_EndToEnd exercises the full digest → analyse
// pipeline through the cobra command tree, the way the teacher's own
// build-verification tests drive a command end to end rather than unit
// testing each flag in isolation.
func TestDigestAndAnalyse_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "events.csv")
	outPath := filepath.Join(dir, "digests.csv")
	analyseOutPath := filepath.Join(dir, "analysed.csv")
	metaPath := filepath.Join(dir, "metadata.toml")

	csvContents := `user,time,cell
alice,2024-01-01T00:00:00Z,cell-a
alice,2024-01-01T00:00:05Z,cell-a
alice,2024-01-01T09:00:00Z,cell-b
bob,2024-01-01T00:00:00Z,cell-c
`
	if err := os.WriteFile(inPath, []byte(csvContents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	root := newRootCmd()
	root.SetArgs([]string{"digest", "--in", inPath, "--out", outPath})
	if err := root.Execute(); err != nil {
		t.Fatalf("digest command: %v", err)
	}
	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading digest output: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected non-empty digest output")
	}

	root2 := newRootCmd()
	root2.SetArgs([]string{"analyse", "--in", inPath, "--out", analyseOutPath,
		"--ow-start", "2024-01-01T00:00:00Z", "--ow-end", "2024-01-01T01:00:00Z",
		"--metadata-out", metaPath})
	if err := root2.Execute(); err != nil {
		t.Fatalf("analyse command: %v", err)
	}
	analysed, err := os.ReadFile(analyseOutPath)
	if err != nil {
		t.Fatalf("reading analysed digest output: %v", err)
	}
	if len(analysed) == 0 {
		t.Fatal("expected non-empty clipped digest output")
	}
	meta, err := os.ReadFile(metaPath)
	if err != nil {
		t.Fatalf("reading metadata output: %v", err)
	}
	if len(meta) == 0 {
		t.Fatal("expected non-empty metadata output")
	}
}

func TestAnalyseCmd_RequiresOut(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"analyse", "--in", "events.csv",
		"--ow-start", "2024-01-01T00:00:00Z", "--ow-end", "2024-01-01T01:00:00Z"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error when --out is missing")
	}
}

func TestDigestCmd_RequiresInAndOut(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"digest"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error when --in/--out are missing")
	}
}
