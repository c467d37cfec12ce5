package dataformat

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// SniffSize is how many leading bytes Detect looks at
const SniffSize = 4096

var zipMagic = []byte("PK\x03\x04")

// Detector guesses the format of uploaded content from a leading sample.
// The guess is advisory; nothing is parsed beyond the sample.
type Detector struct {
	candidates []Format
}

// NewDetector creates a detector limited to candidates. With no candidates every
// built-in descriptor may be returned.
func NewDetector(candidates ...Format) *Detector {
	return &Detector{candidates: candidates}
}

// Detect returns the most likely format for sample, or nil when nothing fits
func (d *Detector) Detect(sample []byte) Format {
	if len(sample) > SniffSize {
		sample = sample[:SniffSize]
	}

	// Binary containers first, whitespace matters there
	if bytes.HasPrefix(sample, zipMagic) {
		return d.pick(XLSX)
	}

	trimmed := bytes.TrimSpace(sample)
	if len(trimmed) == 0 {
		return nil
	}

	if bytes.HasPrefix(trimmed, []byte(Base64Prefix+":")) {
		return d.pick(Base64)
	}

	switch trimmed[0] {
	case '{':
		if looksLikeJSONL(trimmed) {
			return d.pick(JSONL)
		}
		return d.pick(JSON)
	case '[':
		return d.pick(JSON)
	}

	firstLine := trimmed
	if i := bytes.IndexByte(trimmed, '\n'); i >= 0 {
		firstLine = trimmed[:i]
	}
	switch {
	case bytes.HasPrefix(trimmed, []byte("---")):
		return d.pick(YAML)
	case bytes.Contains(firstLine, []byte("\t")):
		return d.pick(TSV)
	case bytes.Contains(firstLine, []byte(",")):
		return d.pick(CSV)
	case looksLikeYAML(trimmed):
		return d.pick(YAML)
	}
	return nil
}

func (d *Detector) pick(f Format) Format {
	if len(d.candidates) == 0 || Contains(d.candidates, f) {
		return f
	}
	return nil
}

// looksLikeJSONL reports whether every complete line of the sample is a JSON object
func looksLikeJSONL(sample []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(sample))
	scanner.Buffer(make([]byte, 0, SniffSize), SniffSize*2)
	lines := 0
	var last string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if last != "" {
			// only judge lines known to be complete
			if !json.Valid([]byte(last)) {
				return false
			}
			lines++
		}
		last = line
	}
	if last != "" && json.Valid([]byte(last)) {
		lines++
	}
	return lines > 1
}

func looksLikeYAML(sample []byte) bool {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(sample, &doc); err != nil {
		return false
	}
	return len(doc) > 0
}
