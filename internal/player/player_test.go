package player

import (
	"errors"
	"testing"

	"podcastbe/internal/models"
)

type fakeTransport struct {
	loads     []string
	plays     int
	pauses    int
	positions []float64
	volumes   []float64
	playErr   error
}

func (f *fakeTransport) Load(src string)             { f.loads = append(f.loads, src) }
func (f *fakeTransport) Play() error                 { f.plays++; return f.playErr }
func (f *fakeTransport) Pause()                      { f.pauses++ }
func (f *fakeTransport) SetPosition(seconds float64) { f.positions = append(f.positions, seconds) }
func (f *fakeTransport) SetVolume(volume float64)    { f.volumes = append(f.volumes, volume) }

type fakeCounter struct {
	counts map[int64]int
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: make(map[int64]int)}
}

func (f *fakeCounter) CountPlay(episodeID int64) {
	f.counts[episodeID]++
}

func episode(id int64, title string) models.Episode {
	return models.Episode{ID: id, Title: title, AudioURL: "/uploads/episodes/e.mp3"}
}

func TestPlayEpisodeCountsOncePerSession(t *testing.T) {
	transport := &fakeTransport{}
	counter := newFakeCounter()
	c := New(transport, counter, nil)

	a := episode(1, "a")

	c.PlayEpisode(a)
	c.PlayEpisode(a) // same episode, already playing: no second count

	if counter.counts[1] != 1 {
		t.Errorf("expected 1 count for episode 1, got %d", counter.counts[1])
	}
	if len(transport.loads) != 1 {
		t.Errorf("expected a single Load for repeated plays of one episode, got %d", len(transport.loads))
	}
	if transport.plays != 2 {
		t.Errorf("expected Play issued on each call, got %d", transport.plays)
	}
}

func TestPlayEpisodeCountsAgainAfterSwap(t *testing.T) {
	transport := &fakeTransport{}
	counter := newFakeCounter()
	c := New(transport, counter, nil)

	a := episode(1, "a")
	b := episode(2, "b")

	c.PlayEpisode(a)
	c.PlayEpisode(b)
	c.PlayEpisode(a)

	if counter.counts[1] != 2 {
		t.Errorf("expected 2 counts for episode 1 (two activations), got %d", counter.counts[1])
	}
	if counter.counts[2] != 1 {
		t.Errorf("expected 1 count for episode 2, got %d", counter.counts[2])
	}
}

func TestPlayEpisodePauseResumeDoesNotRecount(t *testing.T) {
	transport := &fakeTransport{}
	counter := newFakeCounter()
	c := New(transport, counter, nil)

	c.PlayEpisode(episode(1, "a"))
	c.TogglePlay() // pause
	c.TogglePlay() // resume
	c.PlayEpisode(episode(1, "a"))

	if counter.counts[1] != 1 {
		t.Errorf("expected 1 count across pause/resume of one session, got %d", counter.counts[1])
	}
}

func TestPlayEpisodeSwapResetsSession(t *testing.T) {
	transport := &fakeTransport{}
	counter := newFakeCounter()
	c := New(transport, counter, nil)

	c.PlayEpisode(episode(1, "a"))
	c.OnDurationKnown(120)
	c.OnTimeUpdate(42)

	c.PlayEpisode(episode(2, "b"))

	s := c.Session()
	if s.Episode == nil || s.Episode.ID != 2 {
		t.Fatalf("expected episode 2 active, got %+v", s.Episode)
	}
	if s.Position != 0 || s.Duration != 0 {
		t.Errorf("expected position and duration reset on swap, got pos=%v dur=%v", s.Position, s.Duration)
	}
	if len(transport.loads) != 2 {
		t.Errorf("expected Load per distinct episode, got %d", len(transport.loads))
	}
}

func TestPlayEpisodeResolvesURL(t *testing.T) {
	transport := &fakeTransport{}
	c := New(transport, newFakeCounter(), func(audioURL string) string {
		return "http://localhost:8080" + audioURL
	})

	c.PlayEpisode(episode(1, "a"))

	if len(transport.loads) != 1 || transport.loads[0] != "http://localhost:8080/uploads/episodes/e.mp3" {
		t.Errorf("unexpected load target: %v", transport.loads)
	}
}

func TestPlayEpisodeTransportFailure(t *testing.T) {
	transport := &fakeTransport{playErr: errors.New("unsupported asset")}
	counter := newFakeCounter()
	c := New(transport, counter, nil)

	c.PlayEpisode(episode(1, "a"))

	s := c.Session()
	if s.Playing {
		t.Errorf("expected not playing after transport failure")
	}
	if s.Err == nil {
		t.Errorf("expected error recorded in session state")
	}
	// The count still fires: the side effect is fire-and-forget and
	// independent of transport success.
	if counter.counts[1] != 1 {
		t.Errorf("expected count despite transport failure, got %d", counter.counts[1])
	}
}

func TestTogglePlayWithoutEpisode(t *testing.T) {
	transport := &fakeTransport{}
	c := New(transport, newFakeCounter(), nil)

	c.TogglePlay()

	if transport.plays != 0 || transport.pauses != 0 {
		t.Errorf("expected no transport commands without an active episode")
	}
}

func TestTogglePlayFlipsState(t *testing.T) {
	transport := &fakeTransport{}
	c := New(transport, newFakeCounter(), nil)

	c.PlayEpisode(episode(1, "a"))
	if !c.Session().Playing {
		t.Fatalf("expected playing after PlayEpisode")
	}

	c.TogglePlay()
	if c.Session().Playing {
		t.Errorf("expected paused after toggle")
	}
	if transport.pauses != 1 {
		t.Errorf("expected one Pause command, got %d", transport.pauses)
	}

	c.TogglePlay()
	if !c.Session().Playing {
		t.Errorf("expected playing after second toggle")
	}
}

func TestSeekClamps(t *testing.T) {
	transport := &fakeTransport{}
	c := New(transport, newFakeCounter(), nil)

	c.PlayEpisode(episode(1, "a"))
	c.OnDurationKnown(100)

	c.Seek(-5)
	if got := c.Session().Position; got != 0 {
		t.Errorf("expected seek(-5) clamped to 0, got %v", got)
	}

	c.Seek(200)
	if got := c.Session().Position; got != 100 {
		t.Errorf("expected seek past end clamped to duration, got %v", got)
	}

	c.Seek(42)
	if got := c.Session().Position; got != 42 {
		t.Errorf("expected in-range seek kept, got %v", got)
	}

	want := []float64{0, 100, 42}
	if len(transport.positions) != len(want) {
		t.Fatalf("expected %d SetPosition commands, got %d", len(want), len(transport.positions))
	}
	for i, pos := range want {
		if transport.positions[i] != pos {
			t.Errorf("SetPosition[%d] = %v, want %v", i, transport.positions[i], pos)
		}
	}
}

func TestSetVolumeClamps(t *testing.T) {
	transport := &fakeTransport{}
	c := New(transport, newFakeCounter(), nil)

	c.SetVolume(1.5)
	if got := c.Session().Volume; got != 1 {
		t.Errorf("expected volume clamped to 1, got %v", got)
	}

	c.SetVolume(-0.2)
	if got := c.Session().Volume; got != 0 {
		t.Errorf("expected volume clamped to 0, got %v", got)
	}

	c.SetVolume(0.5)
	if got := c.Session().Volume; got != 0.5 {
		t.Errorf("expected volume 0.5, got %v", got)
	}
}

func TestTransportNotificationsMirrorOnly(t *testing.T) {
	transport := &fakeTransport{}
	c := New(transport, newFakeCounter(), nil)

	c.PlayEpisode(episode(1, "a"))
	playsBefore := transport.plays
	pausesBefore := transport.pauses

	c.OnDurationKnown(300)
	c.OnTimeUpdate(12.5)
	c.OnPause()
	c.OnPlay()

	s := c.Session()
	if s.Duration != 300 || s.Position != 12.5 || !s.Playing {
		t.Errorf("unexpected mirrored state: %+v", s)
	}
	// Notifications must not issue transport commands (no feedback loops).
	if transport.plays != playsBefore || transport.pauses != pausesBefore {
		t.Errorf("notifications re-issued transport commands")
	}
}

func TestOnEndedLeavesPausedAtZero(t *testing.T) {
	transport := &fakeTransport{}
	counter := newFakeCounter()
	c := New(transport, counter, nil)

	c.PlayEpisode(episode(1, "a"))
	c.OnDurationKnown(60)
	c.OnTimeUpdate(60)
	c.OnEnded()

	s := c.Session()
	if s.Playing {
		t.Errorf("expected paused after ended")
	}
	if s.Position != 0 {
		t.Errorf("expected position reset to 0 after ended, got %v", s.Position)
	}

	// Replaying the same, still-loaded episode does not count a new session.
	c.PlayEpisode(episode(1, "a"))
	if counter.counts[1] != 1 {
		t.Errorf("expected replay from ended not to recount, got %d", counter.counts[1])
	}
}

func TestSessionReturnsCopy(t *testing.T) {
	c := New(&fakeTransport{}, newFakeCounter(), nil)
	c.PlayEpisode(episode(1, "a"))

	s := c.Session()
	s.Episode.Title = "mutated"

	if c.Session().Episode.Title == "mutated" {
		t.Errorf("expected Session to return a defensive copy")
	}
}
