// Package folderindex reads the on-disk folder layout a (separately
// specified) ingestion pipeline produces: one directory per contiguous
// block range, named "<lo>-<hi>", holding Parquet files for blocks,
// transactions and logs plus a small sidecar index of bloom/row-group
// statistics. Writing these folders is out of scope here — this package
// only defines and reads the read-side contract QueryHandler consumes.
package folderindex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/holiman/bloomfilter/v2"
)

// RowGroupStats carries the precomputed min/max block range for one Parquet
// row group, letting ParquetDataProvider skip row groups outside a query's
// range without reading their data.
type RowGroupStats struct {
	Index    int    `json:"index"`
	NumRows  int64  `json:"num_rows"`
	MinBlock uint64 `json:"min_block"`
	MaxBlock uint64 `json:"max_block"`
}

// FolderIndex describes one folder: its block range (Hi exclusive), the
// address bloom filter covering every log/tx address/topic it contains, and
// the row-group statistics that ParquetDataProvider applies, by row-group
// index, to each of the folder's logs, transactions and blocks files.
type FolderIndex struct {
	Lo            uint64
	Hi            uint64
	Path          string
	AddressFilter *bloomfilter.Filter
	RowGroups     []RowGroupStats
}

// sidecar mirrors the on-disk "index.json" format: a bloom filter persisted
// with bloomfilter.Filter's own binary encoding, plus row-group stats.
type sidecar struct {
	RowGroups  []RowGroupStats `json:"row_groups"`
	BloomBytes []byte          `json:"bloom_bytes"`
}

// FolderIndexIterator yields FolderIndex entries for folders overlapping
// [from, to) in ascending order.
type FolderIndexIterator struct {
	folders []FolderIndex
	pos     int
}

// Open scans rootDir for "<lo>-<hi>" folders overlapping [from, to ∞) and
// loads each one's sidecar index.
func Open(rootDir string, from uint64, to *uint64) (*FolderIndexIterator, error) {
	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return nil, fmt.Errorf("folderindex: read %s: %w", rootDir, err)
	}

	var folders []FolderIndex
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		lo, hi, ok := parseRangeName(e.Name())
		if !ok {
			continue
		}
		if to != nil && lo >= *to {
			continue
		}
		if hi <= from {
			continue
		}

		path := filepath.Join(rootDir, e.Name())
		idx, err := loadSidecar(path, lo, hi)
		if err != nil {
			return nil, fmt.Errorf("folderindex: load %s: %w", path, err)
		}
		folders = append(folders, *idx)
	}

	sort.Slice(folders, func(i, j int) bool { return folders[i].Lo < folders[j].Lo })
	return &FolderIndexIterator{folders: folders}, nil
}

func parseRangeName(name string) (lo, hi uint64, ok bool) {
	parts := strings.SplitN(name, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lo, err1 := strconv.ParseUint(parts[0], 10, 64)
	hi, err2 := strconv.ParseUint(parts[1], 10, 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lo, hi, true
}

func loadSidecar(folderPath string, lo, hi uint64) (*FolderIndex, error) {
	data, err := os.ReadFile(filepath.Join(folderPath, "index.json"))
	if err != nil {
		return nil, err
	}
	var sc sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, err
	}

	var filter *bloomfilter.Filter
	if len(sc.BloomBytes) > 0 {
		filter, _, err = bloomfilter.ReadFrom(bytes.NewReader(sc.BloomBytes))
		if err != nil {
			return nil, fmt.Errorf("decode bloom filter: %w", err)
		}
	}

	return &FolderIndex{
		Lo:            lo,
		Hi:            hi,
		Path:          folderPath,
		AddressFilter: filter,
		RowGroups:     sc.RowGroups,
	}, nil
}

// Next returns the next folder in ascending range order, or false when
// exhausted.
func (it *FolderIndexIterator) Next() (*FolderIndex, bool) {
	if it.pos >= len(it.folders) {
		return nil, false
	}
	f := it.folders[it.pos]
	it.pos++
	return &f, true
}
