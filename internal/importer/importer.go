// ===============================
// internal/importer/importer.go - Drop-Directory Importer
// ===============================

package importer

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"podcastbe/internal/metadata"
	"podcastbe/internal/services"

	"github.com/fsnotify/fsnotify"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".aac":  true,
	".ogg":  true,
	".wav":  true,
	".flac": true,
}

// Importer watches a drop directory and registers audio files placed there as
// catalog episodes: the bytes move into the asset store and the source file
// is removed. Non-audio files and unreadable drops are skipped with a log line.
type Importer struct {
	dir      string
	episodes *services.EpisodeService
	uploads  *services.UploadService
	settle   time.Duration

	watcher   *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	mu      sync.Mutex
	pending map[string]bool
}

// New starts watching dir. Files already present are imported immediately.
// settle is how long a file must sit unchanged before it is picked up, so
// half-copied drops are not ingested.
func New(dir string, episodes *services.EpisodeService, uploads *services.UploadService, settle time.Duration) (*Importer, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	imp := &Importer{
		dir:      dir,
		episodes: episodes,
		uploads:  uploads,
		settle:   settle,
		watcher:  watcher,
		done:     make(chan struct{}),
		pending:  make(map[string]bool),
	}

	imp.wg.Add(1)
	go imp.loop()

	imp.scanExisting()

	return imp, nil
}

// Close stops the watcher and waits for in-flight imports to finish. It is
// safe to call more than once.
func (i *Importer) Close() error {
	var err error
	i.closeOnce.Do(func() {
		close(i.done)
		err = i.watcher.Close()
		i.wg.Wait()
	})
	return err
}

func (i *Importer) loop() {
	defer i.wg.Done()

	for {
		select {
		case event, ok := <-i.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				i.schedule(event.Name)
			}
		case err, ok := <-i.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: import watcher error: %v", err)
		case <-i.done:
			return
		}
	}
}

func (i *Importer) scanExisting() {
	entries, err := os.ReadDir(i.dir)
	if err != nil {
		log.Printf("Warning: failed to scan import directory %s: %v", i.dir, err)
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			i.schedule(filepath.Join(i.dir, entry.Name()))
		}
	}
}

// schedule queues a file for import after the settle window. Repeated write
// events for the same file collapse into the one pending import.
func (i *Importer) schedule(path string) {
	if !audioExtensions[strings.ToLower(filepath.Ext(path))] {
		return
	}

	i.mu.Lock()
	if i.pending[path] {
		i.mu.Unlock()
		return
	}
	i.pending[path] = true
	i.mu.Unlock()

	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		defer func() {
			i.mu.Lock()
			delete(i.pending, path)
			i.mu.Unlock()
		}()

		i.waitSettled(path)

		select {
		case <-i.done:
			return
		default:
		}

		i.importFile(path)
	}()
}

// waitSettled returns once two consecutive stats report the same size.
func (i *Importer) waitSettled(path string) {
	var lastSize int64 = -1
	for {
		select {
		case <-i.done:
			return
		case <-time.After(i.settle):
		}

		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.Size() == lastSize {
			return
		}
		lastSize = info.Size()
	}
}

func (i *Importer) importFile(path string) {
	info := metadata.Probe(path)

	title := info.Title
	if title == "" {
		base := filepath.Base(path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	description := info.Artist

	f, err := os.Open(path)
	if err != nil {
		log.Printf("Warning: failed to open dropped file %s: %v", path, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	audioURL, err := i.uploads.UploadAudio(ctx, f, filepath.Base(path))
	f.Close()
	if err != nil {
		log.Printf("Warning: failed to store dropped file %s: %v", path, err)
		return
	}

	episode, err := i.episodes.Create(ctx, title, description, audioURL)
	if err != nil {
		log.Printf("Warning: failed to register dropped file %s: %v", path, err)
		return
	}

	if err := os.Remove(path); err != nil {
		log.Printf("Warning: failed to remove imported file %s: %v", path, err)
	}

	log.Printf("Imported %s as episode %d (%s)", filepath.Base(path), episode.ID, episode.Title)
}
