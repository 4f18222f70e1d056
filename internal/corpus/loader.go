// Package corpus loads the conversation corpus and provides the
// normalization and target-resolution helpers the presentation layer reads
// conversations through.
package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"annoreview/internal/domain"
)

// DefaultStratum is assigned when a conversation carries no stratum label.
const DefaultStratum = "Unknown"

// maxLineBytes bounds a single corpus line. Conversations are one JSON
// object per line and can run long.
const maxLineBytes = 16 * 1024 * 1024

// Load reads a JSONL corpus file into an ordered conversation sequence.
func Load(path string) ([]domain.Conversation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.WrapEngineError(domain.ErrCorpusOpen.Code, domain.ErrCorpusOpen.Message, err)
	}
	defer f.Close()
	return LoadReader(f)
}

// LoadReader parses one conversation per non-blank line. Any line that fails
// to parse is fatal; the corpus is never partially recovered.
func LoadReader(r io.Reader) ([]domain.Conversation, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var convs []domain.Conversation
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var conv domain.Conversation
		if err := json.Unmarshal([]byte(line), &conv); err != nil {
			return nil, domain.WrapEngineError(domain.ErrCorpusLine.Code,
				fmt.Sprintf("%s (line %d)", domain.ErrCorpusLine.Message, lineNo), err)
		}
		if conv.Stratum == "" {
			conv.Stratum = DefaultStratum
		}
		convs = append(convs, conv)
	}
	if err := sc.Err(); err != nil {
		return nil, domain.WrapEngineError(domain.ErrCorpusOpen.Code, "read corpus", err)
	}
	return convs, nil
}
