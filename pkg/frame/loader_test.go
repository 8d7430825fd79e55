package frame

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writePNG writes a uniform gray test frame.
func writePNG(t *testing.T, path string, gray uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = gray
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadOrdersByIndex(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "frame_0010.png"), 10)
	writePNG(t, filepath.Join(dir, "frame_0002.png"), 2)
	writePNG(t, filepath.Join(dir, "frame_0007.png"), 7)

	seq, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	got := seq.Indices()
	want := []int{2, 7, 10}
	if len(got) != len(want) {
		t.Fatalf("Indices() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Indices()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestLoadSkipsUndecodableFrames(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "frame_0001.png"), 1)
	writePNG(t, filepath.Join(dir, "frame_0003.png"), 3)
	// Valid extension, garbage payload.
	if err := os.WriteFile(filepath.Join(dir, "frame_0002.png"), []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	seq, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(seq) != 2 {
		t.Fatalf("len(seq) = %d, want 2 (bad frame dropped)", len(seq))
	}
	if seq[0].Index != 1 || seq[1].Index != 3 {
		t.Errorf("indices = %v, want [1 3]", seq.Indices())
	}
}

func TestLoadAttachesSidecarMetadata(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "frame_0001.png"), 1)
	writePNG(t, filepath.Join(dir, "frame_0002.png"), 2)

	sidecar := `{
		"1": {"render_time_ms": 16.5, "timestamp": "2026-08-30T12:00:00Z"},
		"2": {"timestamp": "2026-08-30T12:00:00.0165Z"}
	}`
	if err := os.WriteFile(filepath.Join(dir, MetadataFile), []byte(sidecar), 0644); err != nil {
		t.Fatal(err)
	}

	seq, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(seq) != 2 {
		t.Fatalf("len(seq) = %d, want 2", len(seq))
	}

	if !seq[0].HasRenderTime || seq[0].RenderTimeMS != 16.5 {
		t.Errorf("frame 1 render time = (%v, %v), want (16.5, true)", seq[0].RenderTimeMS, seq[0].HasRenderTime)
	}
	want := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if !seq[0].Timestamp.Equal(want) {
		t.Errorf("frame 1 timestamp = %v, want %v", seq[0].Timestamp, want)
	}
	if seq[1].HasRenderTime {
		t.Error("frame 2 should have no render time")
	}
	if seq[1].Timestamp.IsZero() {
		t.Error("frame 2 timestamp missing")
	}
}

func TestLoadMissingSidecarIsFine(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "frame_0001.png"), 1)

	seq, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(seq) != 1 {
		t.Fatalf("len(seq) = %d, want 1", len(seq))
	}
	if seq[0].HasRenderTime || !seq[0].Timestamp.IsZero() {
		t.Error("frame without sidecar should carry no timing metadata")
	}
}

func TestLoadMalformedSidecarFails(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "frame_0001.png"), 1)
	if err := os.WriteFile(filepath.Join(dir, MetadataFile), []byte("{oops"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("Load() should fail on malformed sidecar")
	}
}

func TestLoadComputesContentHash(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "frame_0001.png"), 1)
	writePNG(t, filepath.Join(dir, "frame_0002.png"), 1)
	writePNG(t, filepath.Join(dir, "frame_0003.png"), 99)

	seq, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if seq[0].Hash == "" {
		t.Fatal("hash missing")
	}
	if seq[0].Hash != seq[1].Hash {
		t.Error("identical files should hash identically")
	}
	if seq[0].Hash == seq[2].Hash {
		t.Error("different files should hash differently")
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		name  string
		want  int
		valid bool
	}{
		{"frame_0042.png", 42, true},
		{"0007.jpg", 7, true},
		{"capture_1080p_0012.png", 12, true},
		{"frame.png", 0, false},
		{"notes.txt", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseIndex(tt.name)
		if ok != tt.valid || got != tt.want {
			t.Errorf("parseIndex(%q) = (%d, %v), want (%d, %v)", tt.name, got, ok, tt.want, tt.valid)
		}
	}
}

func TestLoadIgnoresNonImageFiles(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "frame_0001.png"), 1)
	if err := os.WriteFile(filepath.Join(dir, "notes_01.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	seq, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(seq) != 1 {
		t.Errorf("len(seq) = %d, want 1", len(seq))
	}
}
