// Command inspect prints recorded turns from a parquet file as boards with
// the decision that was taken on each.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/brensch/snekpilot/sim"
	"github.com/brensch/snekpilot/store"
)

func main() {
	episode := flag.String("episode", "", "Only print this episode id")
	from := flag.Int("from", 0, "First turn to print")
	to := flag.Int("to", -1, "Last turn to print (-1 = until the end)")
	summary := flag.Bool("summary", false, "Print one line per episode instead of boards")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file.parquet\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	rows, err := store.ReadTurns(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *summary {
		type stats struct {
			turns, ate, overrides int
			last                  store.TurnRow
		}
		var order []string
		byEpisode := map[string]*stats{}
		for _, r := range rows {
			st, ok := byEpisode[r.EpisodeID]
			if !ok {
				st = &stats{}
				byEpisode[r.EpisodeID] = st
				order = append(order, r.EpisodeID)
			}
			st.turns++
			if r.Ate {
				st.ate++
			}
			if r.Overridden {
				st.overrides++
			}
			st.last = r
		}
		for _, id := range order {
			st := byEpisode[id]
			fmt.Printf("%s source=%s size=%d turns=%d ate=%d overrides=%d final_length=%d\n",
				id, st.last.Source, st.last.Size, st.turns, st.ate, st.overrides, len(st.last.BodyX))
		}
		return
	}

	printed := 0
	for _, r := range rows {
		if *episode != "" && r.EpisodeID != *episode {
			continue
		}
		if int(r.Turn) < *from || (*to >= 0 && int(r.Turn) > *to) {
			continue
		}
		fmt.Println(sim.FormatTurn(r))
		printed++
	}
	if printed == 0 {
		fmt.Fprintln(os.Stderr, "no matching turns")
		os.Exit(1)
	}
}
