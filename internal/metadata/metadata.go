// ===============================
// internal/metadata/metadata.go - Best-Effort Audio Probing
// ===============================

package metadata

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"
)

// Info is what could be read out of an audio file. Every field is optional;
// a file that cannot be parsed yields the zero value.
type Info struct {
	Title           string
	Artist          string
	DurationSeconds float64
}

// Probe reads embedded tags and, for MP3 files, walks the frames for a
// duration. Parsing failures degrade to zero values instead of erroring:
// the catalog never rejects an upload over unreadable metadata.
func Probe(path string) Info {
	var info Info

	if title, artist, ok := readTags(path); ok {
		info.Title = title
		info.Artist = artist
	}

	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		if dur, err := mp3Duration(path); err == nil && dur > 0 {
			info.DurationSeconds = dur
		}
	}

	return info
}

// TitleOrStem returns the tagged title, falling back to the filename without
// its extension.
func TitleOrStem(path string) string {
	if info := Probe(path); info.Title != "" {
		return info.Title
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func readTags(path string) (string, string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", false
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return "", "", false
	}

	return strings.TrimSpace(meta.Title()), strings.TrimSpace(meta.Artist()), true
}

func mp3Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	decoder := mp3.NewDecoder(f)
	var frame mp3.Frame
	var skipped int
	var total float64

	for {
		err := decoder.Decode(&frame, &skipped)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		total += frame.Duration().Seconds()
	}

	return total, nil
}
