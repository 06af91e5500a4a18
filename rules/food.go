package rules

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"

	"github.com/brensch/snekpilot/game"
)

// PlaceFood picks a free cell for the next food, or nil when the snake
// covers the whole board.
//
// Callers choose the randomness: a seeded rng for episodes, or nil for a
// deterministic pseudo-random cell derived from the state (tests, replays).
func PlaceFood(s *State, rng *rand.Rand) *game.Point {
	if s == nil || s.Grid.Size <= 0 {
		return nil
	}

	occupied := make([]bool, s.Grid.Area())
	for _, p := range s.Body {
		if s.Grid.InBounds(p) {
			occupied[s.Grid.Index(p)] = true
		}
	}

	available := make([]game.Point, 0, s.Grid.Area()-len(s.Body))
	for i, taken := range occupied {
		if !taken {
			available = append(available, s.Grid.Point(i))
		}
	}
	if len(available) == 0 {
		return nil
	}

	var idx int
	if rng != nil {
		idx = rng.Intn(len(available))
	} else {
		idx = int(deterministicU64Fast(s, 0x464F4F44) % uint64(len(available)))
	}
	p := available[idx]
	return &p
}

// deterministicU64Fast mixes size, turn, score and the head into a hash.
func deterministicU64Fast(s *State, salt uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(uint32(s.Grid.Size)))
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(uint32(s.Turn))|uint64(uint32(s.Score))<<32)
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], salt)
	_, _ = h.Write(buf[:])
	if len(s.Body) > 0 {
		head := s.Body[0]
		binary.LittleEndian.PutUint64(buf[:], (uint64(uint32(head.X))<<32)|uint64(uint32(head.Y)))
		_, _ = h.Write(buf[:])
	}

	return splitmix64(h.Sum64())
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
