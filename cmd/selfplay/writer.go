package main

import (
	"log/slog"

	"github.com/brensch/snekpilot/store"
)

type episodeWriteRequest struct {
	rows []store.TurnRow
}

// parquetWriterLoop buffers finished episodes and flushes one file per
// gamesPerFlush episodes, plus a final flush when in is closed. It returns
// the paths written.
func parquetWriterLoop(outDir string, gamesPerFlush int, in <-chan episodeWriteRequest, logger *slog.Logger) []string {
	if gamesPerFlush <= 0 {
		gamesPerFlush = 50
	}

	var written []string
	pendingRows := make([]store.TurnRow, 0, 256*gamesPerFlush)
	pendingGames := 0

	flush := func(final bool) {
		outPath, err := store.WriteBatchAtomic(outDir, pendingRows)
		if err != nil {
			logger.Error("parquet flush failed", "final", final, "games", pendingGames, "rows", len(pendingRows), "err", err)
		} else {
			logger.Info("parquet flush ok", "path", outPath, "final", final, "games", pendingGames, "rows", len(pendingRows))
			written = append(written, outPath)
		}
		pendingRows = pendingRows[:0]
		pendingGames = 0
	}

	for req := range in {
		if len(req.rows) == 0 {
			continue
		}
		pendingRows = append(pendingRows, req.rows...)
		pendingGames++
		if pendingGames >= gamesPerFlush {
			flush(false)
		}
	}
	if pendingGames > 0 {
		flush(true)
	}
	return written
}
