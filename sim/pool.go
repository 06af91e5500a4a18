package sim

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// seedStride spaces per-episode seeds so neighbouring episodes do not share
// food sequences.
const seedStride = 1000003

// Summary aggregates the results of a batch of episodes.
type Summary struct {
	Episodes    int
	Completed   int
	Wins        int
	TotalTurns  int64
	TotalScore  int
	MaxScore    int
	NoDecisions int
	Overrides   int
	Deaths      map[string]int
	Duration    time.Duration
}

// MeanScore is the average score over all episodes played.
func (s Summary) MeanScore() float64 {
	if s.Episodes == 0 {
		return 0
	}
	return float64(s.TotalScore) / float64(s.Episodes)
}

// MeanTurns is the average episode length in turns.
func (s Summary) MeanTurns() float64 {
	if s.Episodes == 0 {
		return 0
	}
	return float64(s.TotalTurns) / float64(s.Episodes)
}

func (s *Summary) add(r Result) {
	s.Episodes++
	if r.Completed {
		s.Completed++
	}
	if r.Won {
		s.Wins++
	}
	s.TotalTurns += int64(r.Turns)
	s.TotalScore += r.Score
	if r.Score > s.MaxScore {
		s.MaxScore = r.Score
	}
	s.NoDecisions += r.NoDecisions
	s.Overrides += r.Overrides
	if r.Death != "" {
		s.Deaths[r.Death]++
	}
}

// RunMany plays n episodes over a pool of workers. Episode i uses
// opts.Seed + i*seedStride as its seed (a zero base seed is replaced by the
// current time first) and "<prefix>_<i>" as its id, so a run is reproducible
// from its base seed. onDone, when set, is called once per finished episode
// and never concurrently. opts.OnStep is shared by all workers and must be
// safe for concurrent use. Episodes not yet started when ctx ends are skipped.
func RunMany(ctx context.Context, n, workers int, opts Options, onDone func(Outcome)) Summary {
	start := time.Now()
	sum := Summary{Deaths: map[string]int{}}
	if n <= 0 {
		return sum
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	base := opts.Seed
	if base == 0 {
		base = time.Now().UnixNano()
	}
	prefix := opts.EpisodeID
	if prefix == "" {
		prefix = fmt.Sprintf("run_%d", base)
	}

	var next atomic.Int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if ctx != nil && ctx.Err() != nil {
					return
				}
				i := next.Add(1) - 1
				if i >= int64(n) {
					return
				}

				epOpts := opts
				epOpts.Seed = base + i*seedStride
				epOpts.EpisodeID = fmt.Sprintf("%s_%d", prefix, i)
				out := Play(ctx, epOpts)

				mu.Lock()
				sum.add(out.Result)
				if onDone != nil {
					onDone(out)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	sum.Duration = time.Since(start)
	return sum
}
