// Package archive exports history rows into compressed NDJSON segments in
// blob storage. Each exported row is flagged archived in the same
// transaction that moves the entity's watermark, so every run is incremental.
package archive

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"

	"healthops/internal/core/blob"
	"healthops/pkg/logger"
)

const (
	contentType = "application/x-ndjson+zstd"

	metaLastHistID = "lasthistid"
	metaRows       = "rows"
)

// Line is one NDJSON record of a segment.
type Line struct {
	Entity      string          `json:"entity"`
	HistID      string          `json:"histId"`
	HistAddedAt time.Time       `json:"histAddedAt"`
	Snapshot    json.RawMessage `json:"snapshot"`
}

// Report summarizes one run.
type Report struct {
	Segments int
	Rows     int
}

// Archiver copies new history rows of every source into the store.
type Archiver struct {
	store     blob.Store
	marks     *Watermarks
	sources   []Source
	batchSize int

	encoder *zstd.Encoder
	decoder *zstd.Decoder
	now     func() time.Time
}

// New creates an Archiver writing segments of at most batchSize rows.
func New(store blob.Store, marks *Watermarks, batchSize int, sources ...Source) (*Archiver, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &Archiver{
		store:     store,
		marks:     marks,
		sources:   sources,
		batchSize: batchSize,
		encoder:   encoder,
		decoder:   decoder,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Run archives every interval until ctx is cancelled.
func (a *Archiver) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := a.RunOnce(ctx); err != nil && ctx.Err() == nil {
			logger.Error(ctx, "history archive run failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce drains the new history of every source. A failing source does
// not stop the others.
func (a *Archiver) RunOnce(ctx context.Context) (Report, error) {
	var total Report
	var errs []error
	for _, src := range a.sources {
		r, err := a.drain(ctx, src)
		total.Segments += r.Segments
		total.Rows += r.Rows
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
		}
	}
	if total.Rows > 0 {
		logger.Info(ctx, "history archived", "segments", total.Segments, "rows", total.Rows)
	}
	return total, errors.Join(errs...)
}

func (a *Archiver) drain(ctx context.Context, src Source) (Report, error) {
	var r Report
	for {
		entries, err := src.Pending(ctx, a.batchSize)
		if err != nil {
			return r, err
		}
		if len(entries) == 0 {
			return r, nil
		}

		key, histIDs, err := a.writeSegment(ctx, src.Name(), entries)
		if err != nil {
			return r, err
		}

		var marked int64
		at := a.now()
		err = a.marks.txm.RunInTransaction(ctx, func(ctx context.Context) error {
			n, err := src.MarkArchived(ctx, histIDs, at)
			if err != nil {
				return err
			}
			marked = n
			return a.marks.Advance(ctx, src.Name(), histIDs[len(histIDs)-1], key, n, at)
		})
		if err != nil {
			return r, err
		}
		if marked == 0 {
			return r, fmt.Errorf("segment %s holds no pending rows", key)
		}
		r.Segments++
		r.Rows += int(marked)

		if len(entries) < a.batchSize && int(marked) == len(entries) {
			return r, nil
		}
	}
}

// writeSegment stores entries under a key derived from the first histId and
// returns the histIds the stored segment holds. When a previous run stored
// the segment but died before flagging its rows, the stored segment is kept
// and its own histIds are returned.
func (a *Archiver) writeSegment(ctx context.Context, name string, entries []Entry) (string, []string, error) {
	key := fmt.Sprintf("%s/%s.ndjson.zst", name, entries[0].HistID)
	histIDs := make([]string, len(entries))

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, e := range entries {
		line := struct {
			Entity      string    `json:"entity"`
			HistID      string    `json:"histId"`
			HistAddedAt time.Time `json:"histAddedAt"`
			Snapshot    any       `json:"snapshot"`
		}{name, e.HistID, e.HistAddedAt, e.Snapshot}
		if err := enc.Encode(line); err != nil {
			return "", nil, fmt.Errorf("encode %s: %w", e.HistID, err)
		}
		histIDs[i] = e.HistID
	}

	compressed := a.encoder.EncodeAll(buf.Bytes(), nil)
	_, err := a.store.Put(ctx, key, bytes.NewReader(compressed), blob.PutOptions{
		ContentType: contentType,
		Metadata: map[string]string{
			metaLastHistID: histIDs[len(histIDs)-1],
			metaRows:       strconv.Itoa(len(entries)),
		},
	})
	if errors.Is(err, blob.ErrExists) {
		logger.Warn(ctx, "history segment already stored", "key", key)
		lines, err := a.ReadSegment(ctx, key)
		if err != nil {
			return "", nil, err
		}
		if len(lines) == 0 {
			return "", nil, fmt.Errorf("stored segment %s is empty", key)
		}
		stored := make([]string, len(lines))
		for i, l := range lines {
			stored[i] = l.HistID
		}
		return key, stored, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("store %s: %w", key, err)
	}
	return key, histIDs, nil
}

// ReadSegment decodes a stored segment.
func (a *Archiver) ReadSegment(ctx context.Context, key string) ([]Line, error) {
	_, rc, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	compressed, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	raw, err := a.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", key, err)
	}

	var lines []Line
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		var l Line
		if err := json.Unmarshal(sc.Bytes(), &l); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		lines = append(lines, l)
	}
	return lines, sc.Err()
}

// Close releases the codec resources.
func (a *Archiver) Close() {
	_ = a.encoder.Close()
	a.decoder.Close()
}
