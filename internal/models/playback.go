package models

// PlayerStatus is the coarse state of a user's audio player.
type PlayerStatus string

const (
	PlayerIdle    PlayerStatus = "idle"
	PlayerLoading PlayerStatus = "loading"
	PlayerPlaying PlayerStatus = "playing"
	PlayerPaused  PlayerStatus = "paused"
)

// PlayerState is the snapshot published to clients on every transition.
type PlayerState struct {
	Status    PlayerStatus `json:"status"`
	Buffering bool         `json:"buffering"`
	Episode   *Episode     `json:"episode,omitempty"`
	Position  float64      `json:"position"`
	Duration  float64      `json:"duration"`
	Rate      float64      `json:"rate"`
}
