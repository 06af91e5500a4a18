// Package store persists per-turn decision records as Parquet.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// SchemaName is written into every file's key-value metadata.
const SchemaName = "turn_row_v1"

// TurnRow is one decision taken during an episode.
//
// Coordinates use the controller's frame: (0,0) is top-left, up is y-1.
// Move is the chosen direction ordinal (0=Up, 1=Down, 2=Left, 3=Right), or
// -1 when the policy returned no decision.
type TurnRow struct {
	EpisodeID string `parquet:"episode_id,dict"`
	Turn      int32  `parquet:"turn"`
	Size      int32  `parquet:"size"`

	BodyX []int32 `parquet:"body_x"`
	BodyY []int32 `parquet:"body_y"`

	HasFood bool  `parquet:"has_food"`
	FoodX   int32 `parquet:"food_x"`
	FoodY   int32 `parquet:"food_y"`

	Move       int32   `parquet:"move"`
	Reason     string  `parquet:"reason,dict"`
	Score      float64 `parquet:"score"`
	Reachable  int32   `parquet:"reachable"`
	Distance   int32   `parquet:"distance"`
	PathLen    int32   `parquet:"path_len"`
	OnPath     bool    `parquet:"on_path"`
	Overridden bool    `parquet:"overridden"`
	Ate        bool    `parquet:"ate"`

	Evaluations []MoveScore `parquet:"evaluations"`

	Source string `parquet:"source,dict"`
}

// MoveScore is the lookahead result for one candidate move.
type MoveScore struct {
	Move      int32   `parquet:"move"`
	Score     float64 `parquet:"score"`
	Reachable int32   `parquet:"reachable"`
	Valid     bool    `parquet:"valid"`
}

func writerOptions() []parquet.WriterOption {
	return []parquet.WriterOption{
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", SchemaName),
	}
}

// WriteBatchAtomic writes rows to outDir/tmp and then renames the file into
// outDir, so readers never observe a partially-written file.
// The returned path is the final parquet file path.
func WriteBatchAtomic(outDir string, rows []TurnRow) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("batch_%d.parquet", time.Now().UnixNano())
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows, writerOptions()...); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}

// ReadTurns loads every row of a turn file.
func ReadTurns(path string) ([]TurnRow, error) {
	rows, err := parquet.ReadFile[TurnRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	return rows, nil
}
