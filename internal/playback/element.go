package playback

import (
	"sync"
	"time"
)

// Element abstracts an audio element. Durations and positions are seconds;
// a zero Duration means it is not known yet.
type Element interface {
	Load(src string)
	Play()
	Pause()
	CurrentTime() float64
	SetCurrentTime(t float64)
	Duration() float64
	SetRate(rate float64)
}

// reporter is implemented by elements that accept position reports from
// the real player in the browser.
type reporter interface {
	Report(position, duration float64)
}

// VirtualElement is a server-side stand-in for the browser's audio element.
// Its playhead advances with wall time multiplied by the rate while playing,
// and is corrected whenever the browser reports its actual position.
type VirtualElement struct {
	mu       sync.Mutex
	now      func() time.Time
	src      string
	playing  bool
	position float64
	anchor   time.Time
	duration float64
	rate     float64
}

func NewVirtualElement() *VirtualElement {
	return &VirtualElement{now: time.Now, rate: 1}
}

// Src returns the loaded source, empty when nothing is loaded.
func (v *VirtualElement) Src() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.src
}

// Playing reports whether the playhead is advancing.
func (v *VirtualElement) Playing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing
}

func (v *VirtualElement) Load(src string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.src = src
	v.playing = false
	v.position = 0
	v.duration = 0
}

func (v *VirtualElement) Play() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.src == "" || v.playing {
		return
	}
	v.anchor = v.now()
	v.playing = true
}

func (v *VirtualElement) Pause() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.position = v.currentLocked()
	v.playing = false
}

func (v *VirtualElement) CurrentTime() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.currentLocked()
}

func (v *VirtualElement) currentLocked() float64 {
	pos := v.position
	if v.playing {
		pos += v.now().Sub(v.anchor).Seconds() * v.rate
	}
	if v.duration > 0 && pos > v.duration {
		pos = v.duration
	}
	return pos
}

func (v *VirtualElement) SetCurrentTime(t float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.position = t
	v.anchor = v.now()
}

func (v *VirtualElement) Duration() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.duration
}

func (v *VirtualElement) SetRate(rate float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.position = v.currentLocked()
	v.anchor = v.now()
	v.rate = rate
}

// Report replaces the playhead with the browser's position, clamped to
// [0, duration]. A positive duration also updates the known duration.
func (v *VirtualElement) Report(position, duration float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if duration > 0 {
		v.duration = duration
	}
	if position < 0 {
		position = 0
	}
	if v.duration > 0 && position > v.duration {
		position = v.duration
	}
	v.position = position
	v.anchor = v.now()
}
