// Package export renders the annotation log as line-delimited JSON.
package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"annoreview/internal/domain"
)

// Serialize renders each record as one line of canonical JSON, in log
// order. An empty sequence returns ErrLogEmpty, a recognized "nothing to
// export" condition, not a hard failure.
func Serialize(records []domain.AnnotationRecord) ([]byte, error) {
	if len(records) == 0 {
		return nil, domain.ErrLogEmpty
	}

	var buf bytes.Buffer
	for i, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("marshal record %d: %w", i, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Parse reads serialized output back into records. Round-tripping through
// Serialize and Parse reproduces structurally equal records.
func Parse(r io.Reader) ([]domain.AnnotationRecord, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []domain.AnnotationRecord
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var rec domain.AnnotationRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("parse record (line %d): %w", lineNo, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return records, nil
}
