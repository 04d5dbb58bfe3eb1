// Package widgets serves the small dashboard widgets: the Pokémon of the
// day and a trivia feed.
package widgets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vrsandeep/homebase/internal/fetch"
)

// PokemonCount is the number of Pokémon the daily pick rotates through.
const PokemonCount = 1025

// Pokemon is the widget payload.
type Pokemon struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Image  string   `json:"image"`
	Types  []string `json:"types"`
	Height int      `json:"height"`
	Weight int      `json:"weight"`
	Date   string   `json:"date"`
}

type pokeAPIResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Height  int    `json:"height"`
	Weight  int    `json:"weight"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
		Other        map[string]struct {
			FrontDefault string `json:"front_default"`
		} `json:"other"`
	} `json:"sprites"`
	Types []struct {
		Slot int `json:"slot"`
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
}

// PokemonOfTheDay picks a Pokémon from the calendar day and caches it until
// the day changes.
type PokemonOfTheDay struct {
	client  *fetch.Client
	baseURL string
	now     func() time.Time

	mu     sync.Mutex
	day    string
	cached *Pokemon
}

func NewPokemonOfTheDay(client *fetch.Client, baseURL string) *PokemonOfTheDay {
	return &PokemonOfTheDay{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// DailyPokemonID maps a day to an id in [1, PokemonCount].
func DailyPokemonID(t time.Time) int {
	days := t.UTC().Unix() / 86400
	return int(days%PokemonCount) + 1
}

// Get returns today's Pokémon, fetching it on the first call of the day.
func (p *PokemonOfTheDay) Get(ctx context.Context) (*Pokemon, error) {
	now := p.now().UTC()
	day := now.Format("2006-01-02")

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached != nil && p.day == day {
		return p.cached, nil
	}

	id := DailyPokemonID(now)
	body, err := p.client.GetBody(ctx, "widget", fmt.Sprintf("%s/pokemon/%d", p.baseURL, id), "application/json")
	if err != nil {
		return nil, err
	}
	var resp pokeAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode pokemon %d: %w", id, err)
	}

	mon := &Pokemon{
		ID:     resp.ID,
		Name:   resp.Name,
		Image:  resp.Sprites.FrontDefault,
		Height: resp.Height,
		Weight: resp.Weight,
		Types:  make([]string, 0, len(resp.Types)),
		Date:   day,
	}
	if art, ok := resp.Sprites.Other["official-artwork"]; ok && art.FrontDefault != "" {
		mon.Image = art.FrontDefault
	}
	for _, t := range resp.Types {
		mon.Types = append(mon.Types, t.Type.Name)
	}

	p.day = day
	p.cached = mon
	return mon, nil
}
