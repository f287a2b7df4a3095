// ===============================
// internal/player/player.go - Playback Coordinator
// ===============================

// Package player owns the single active-episode playback state. The
// coordinator mirrors a transport (the actual audio playback primitive),
// issues commands to it, and fires the play-count side effect exactly once
// per play session. A play session runs from the moment an episode becomes
// the active one until a different episode takes its place.
package player

import (
	"podcastbe/internal/models"
	"sync"
)

// Transport is the underlying playback primitive the coordinator commands.
// Implementations report what happened back through the coordinator's
// notification methods; the coordinator never polls.
type Transport interface {
	Load(src string)
	Play() error
	Pause()
	SetPosition(seconds float64)
	SetVolume(volume float64)
}

// PlayCounter receives the fire-and-forget play-count side effect.
// Implementations must not block; their outcome is unobservable by design.
type PlayCounter interface {
	CountPlay(episodeID int64)
}

// Session is a snapshot of the coordinator's state. Position and duration are
// seconds; volume is 0..1. Counted reports whether the current episode's play
// session has already been counted.
type Session struct {
	Episode  *models.Episode
	Playing  bool
	Position float64
	Duration float64
	Volume   float64
	Counted  bool
	Err      error
}

const defaultVolume = 0.8

// Coordinator serializes all playback transitions behind one mutex: user
// calls and transport notifications behave as a single logical event queue.
// Construct one at the application root and pass it down; there is no
// package-level instance.
type Coordinator struct {
	mu        sync.Mutex
	transport Transport
	counter   PlayCounter
	resolve   func(audioURL string) string

	current  *models.Episode
	playing  bool
	position float64
	duration float64
	volume   float64
	counted  bool
	lastErr  error
}

// New creates a coordinator. resolve maps an episode's stored audio_url to
// the address the transport can load (absolute URLs pass through unchanged);
// nil means use the URL as recorded.
func New(transport Transport, counter PlayCounter, resolve func(string) string) *Coordinator {
	if resolve == nil {
		resolve = func(audioURL string) string { return audioURL }
	}
	return &Coordinator{
		transport: transport,
		counter:   counter,
		resolve:   resolve,
		volume:    defaultVolume,
	}
}

// PlayEpisode makes episode the active one and starts playback. Swapping to a
// different episode resets position and the one-shot counted flag; calling it
// again for the already-active episode only (re)starts the transport. The
// play-count call fires at most once per session and is never awaited.
func (c *Coordinator) PlayEpisode(episode models.Episode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || c.current.ID != episode.ID {
		ep := episode
		c.current = &ep
		c.position = 0
		c.duration = 0
		c.counted = false
		c.lastErr = nil
		c.transport.Load(c.resolve(episode.AudioURL))
	}

	if err := c.transport.Play(); err != nil {
		// Best effort: record the condition for the presentation layer, no retry.
		c.lastErr = err
		c.playing = false
	} else {
		c.playing = true
		c.lastErr = nil
	}

	if !c.counted {
		c.counted = true
		c.counter.CountPlay(c.current.ID)
	}
}

// TogglePlay flips between playing and paused. Without an active episode it
// does nothing.
func (c *Coordinator) TogglePlay() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return
	}

	if c.playing {
		c.transport.Pause()
		c.playing = false
		return
	}

	if err := c.transport.Play(); err != nil {
		c.lastErr = err
		return
	}
	c.playing = true
	c.lastErr = nil
}

// Seek moves the position, clamped to [0, duration].
func (c *Coordinator) Seek(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return
	}

	if seconds < 0 {
		seconds = 0
	}
	if c.duration > 0 && seconds > c.duration {
		seconds = c.duration
	}

	c.position = seconds
	c.transport.SetPosition(seconds)
}

// SetVolume sets the volume, clamped to [0, 1].
func (c *Coordinator) SetVolume(volume float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}

	c.volume = volume
	c.transport.SetVolume(volume)
}

// ===============================
// TRANSPORT NOTIFICATIONS
// ===============================
//
// These mirror transport-originated state into the session without issuing
// transport commands, so an externally-triggered pause or tick never loops
// back into the transport.

// OnTimeUpdate records the advancing playback position.
func (c *Coordinator) OnTimeUpdate(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seconds >= 0 {
		c.position = seconds
	}
}

// OnDurationKnown records the asset duration once the transport learns it.
func (c *Coordinator) OnDurationKnown(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seconds >= 0 {
		c.duration = seconds
	}
}

// OnEnded marks playback finished: paused at position zero, ready to replay.
func (c *Coordinator) OnEnded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = false
	c.position = 0
}

// OnPlay mirrors a transport-originated resume.
func (c *Coordinator) OnPlay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = true
}

// OnPause mirrors a transport-originated pause.
func (c *Coordinator) OnPause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = false
}

// OnError records a non-fatal transport failure for the presentation layer.
func (c *Coordinator) OnError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
	c.playing = false
}

// Session returns a copy of the current playback state.
func (c *Coordinator) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	var episode *models.Episode
	if c.current != nil {
		ep := *c.current
		episode = &ep
	}

	return Session{
		Episode:  episode,
		Playing:  c.playing,
		Position: c.position,
		Duration: c.duration,
		Volume:   c.volume,
		Counted:  c.counted,
		Err:      c.lastErr,
	}
}
