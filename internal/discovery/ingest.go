package discovery

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dshills/cxxcorpus/internal/corpus"
	"github.com/dshills/cxxcorpus/pkg/metadata"
)

// maxFactLine bounds one JSON-lines record
const maxFactLine = 4 << 20

// IngestFacts merges a JSON-lines stream of metadata.Fact records into c.
// Blank lines are skipped. It stops at the first malformed or rejected
// record and returns the number merged before it. Records carrying an
// alternative scope are merged after the rest of the stream.
func IngestFacts(ctx context.Context, c *corpus.Corpus, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFactLine)

	batch := c.NewBatch()
	merged := 0
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return merged, err
		}
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var fact metadata.Fact
		if err := json.Unmarshal(raw, &fact); err != nil {
			return merged, fmt.Errorf("line %d: %w", line, err)
		}
		held, err := batch.Merge(&fact)
		if err != nil {
			return merged, fmt.Errorf("line %d: %w", line, err)
		}
		if !held {
			merged++
		}
	}
	if err := scanner.Err(); err != nil {
		return merged, fmt.Errorf("line %d: %w", line+1, err)
	}
	settled, errs := batch.Flush()
	merged += settled
	if len(errs) > 0 {
		return merged, errs[0]
	}
	return merged, nil
}

func ingestFile(ctx context.Context, c *corpus.Corpus, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()
	return IngestFacts(ctx, c, f)
}
