package sharding

import (
	"bytes"
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// Shard represents a single fragment of a scattered message
type Shard struct {
	Index int    // 0-based index
	Data  []byte // erasure coded bytes
}

// Splitter handles erasure coding (Reed-Solomon)
type Splitter struct {
	Total     int
	Threshold int
}

func NewSplitter(total, threshold int) (*Splitter, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("threshold must be at least 1")
	}
	if threshold > total {
		return nil, fmt.Errorf("threshold cannot exceed total shards")
	}
	if total > 256 {
		return nil, fmt.Errorf("total shards cannot exceed 256")
	}
	return &Splitter{
		Total:     total,
		Threshold: threshold,
	}, nil
}

// Split divides data into Threshold data shards and Total-Threshold parity
// shards; any Threshold of them are enough for Join.
func (s *Splitter) Split(data []byte) ([]Shard, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot split empty data")
	}

	enc, err := reedsolomon.New(s.Threshold, s.Total-s.Threshold)
	if err != nil {
		return nil, err
	}

	// Split the data into equal parts.
	shardsBytes, err := enc.Split(data)
	if err != nil {
		return nil, err
	}

	// Generate parity shards
	if err := enc.Encode(shardsBytes); err != nil {
		return nil, err
	}

	result := make([]Shard, s.Total)
	for i, data := range shardsBytes {
		result[i] = Shard{Index: i, Data: data}
	}

	return result, nil
}

// Join reverses the Split process. shards is keyed by 0-based index.
func (s *Splitter) Join(shards map[int][]byte, originalSize int) ([]byte, error) {
	enc, err := reedsolomon.New(s.Threshold, s.Total-s.Threshold)
	if err != nil {
		return nil, err
	}

	// Prepare the slice for the library.
	reconstructShards := make([][]byte, s.Total)
	validCount := 0
	shardSize := -1

	for i := 0; i < s.Total; i++ {
		data, ok := shards[i]
		if !ok {
			continue
		}
		if shardSize >= 0 && len(data) != shardSize {
			return nil, fmt.Errorf("shard %d has size %d, expected %d", i, len(data), shardSize)
		}
		shardSize = len(data)
		reconstructShards[i] = data
		validCount++
	}

	if validCount < s.Threshold {
		return nil, fmt.Errorf("not enough shards to reconstruct: have %d, need %d", validCount, s.Threshold)
	}

	// Reconstruct the missing data shards
	if err := enc.ReconstructData(reconstructShards); err != nil {
		return nil, fmt.Errorf("reconstruction failed: %w", err)
	}

	var buf bytes.Buffer
	if err := enc.Join(&buf, reconstructShards, originalSize); err != nil {
		return nil, fmt.Errorf("join failed: %w", err)
	}

	return buf.Bytes(), nil
}
