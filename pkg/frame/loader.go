package frame

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	// Register decoders for the formats capture tools commonly emit.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// MetadataFile is the sidecar filename looked up next to the frame images.
const MetadataFile = "timing.json"

// imageExts is the set of file extensions considered frame images.
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".webp": true,
}

// indexRe matches runs of digits in a filename stem. The last run is taken
// as the frame index, so both "frame_0042" and "0042_final" parse to 42.
var indexRe = regexp.MustCompile(`\d+`)

// frameMeta is one sidecar entry, keyed by the string form of the frame index.
type frameMeta struct {
	RenderTimeMS *float64 `json:"render_time_ms"`
	Timestamp    string   `json:"timestamp"`
}

// Loader reads capture directories into sequences. The zero value is usable;
// set Logger to surface decode warnings.
type Loader struct {
	// Logger receives warnings for dropped frames and malformed metadata.
	// May be nil.
	Logger *log.Logger
}

// Load reads dir with a default (silent) loader. See [Loader.Load].
func Load(dir string) (Sequence, error) {
	return (&Loader{}).Load(dir)
}

// Load scans dir for frame images, decodes them, attaches sidecar timing
// metadata, and returns the frames sorted by ascending index.
//
// Files that fail to decode are dropped with a warning. Files without a
// numeric index in their name are ignored. Duplicate indices keep the first
// file in lexical order and warn about the rest. An empty directory yields
// an empty (non-nil error-free) sequence; callers decide whether that is
// fatal.
func (l *Loader) Load(dir string) (Sequence, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read capture dir: %w", err)
	}

	meta, err := l.loadMetadata(filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	seen := make(map[int]string, len(names))
	seq := make(Sequence, 0, len(names))
	for _, name := range names {
		idx, ok := parseIndex(name)
		if !ok {
			l.warnf("skipping %s: no frame index in filename", name)
			continue
		}
		path := filepath.Join(dir, name)
		if prev, dup := seen[idx]; dup {
			l.warnf("skipping %s: duplicate frame index %d (already loaded from %s)", name, idx, prev)
			continue
		}

		rec, err := l.loadFrame(path, idx)
		if err != nil {
			l.warnf("%v", &DecodeError{Path: path, Err: err})
			continue
		}
		applyMeta(rec, meta[strconv.Itoa(idx)], l)
		seen[idx] = name
		seq = append(seq, *rec)
	}

	sort.Slice(seq, func(i, j int) bool { return seq[i].Index < seq[j].Index })
	if err := seq.validate(); err != nil {
		return nil, err
	}
	return seq, nil
}

// loadFrame decodes a single image file and hashes its contents.
func (l *Loader) loadFrame(path string, idx int) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	return &Record{
		Index: idx,
		Path:  path,
		Hash:  hex.EncodeToString(sum[:]),
		Image: img,
	}, nil
}

// loadMetadata reads the timing sidecar if present. A missing file is fine;
// a malformed one is a hard error since it indicates a broken capture run.
func (l *Loader) loadMetadata(path string) (map[string]frameMeta, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var meta map[string]frameMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return meta, nil
}

// applyMeta copies sidecar fields onto the record. Negative render times and
// unparseable timestamps are dropped with a warning.
func applyMeta(rec *Record, m frameMeta, l *Loader) {
	if m.RenderTimeMS != nil {
		if *m.RenderTimeMS < 0 {
			l.warnf("frame %d: negative render_time_ms %v ignored", rec.Index, *m.RenderTimeMS)
		} else {
			rec.RenderTimeMS = *m.RenderTimeMS
			rec.HasRenderTime = true
		}
	}
	if m.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, m.Timestamp)
		if err != nil {
			l.warnf("frame %d: bad timestamp %q ignored", rec.Index, m.Timestamp)
		} else {
			rec.Timestamp = ts
		}
	}
}

// parseIndex extracts the frame index from a filename. The last digit run in
// the stem wins, so format counters like "1080p" in prefixes don't confuse it
// as long as the index comes last.
func parseIndex(name string) (int, bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	matches := indexRe.FindAllString(stem, -1)
	if len(matches) == 0 {
		return 0, false
	}
	idx, err := strconv.Atoi(matches[len(matches)-1])
	if err != nil {
		return 0, false
	}
	return idx, true
}

func (l *Loader) warnf(format string, args ...any) {
	if l.Logger != nil {
		l.Logger.Warnf(format, args...)
	}
}
