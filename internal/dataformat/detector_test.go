package dataformat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectorDetect(t *testing.T) {
	detector := NewDetector()

	tests := []struct {
		name string
		data string
		want Format
	}{
		{"base64 envelope", "TGB64:1.0:eyJ0eXBlIjoibWV0YWRhdGEifQ==", Base64},
		{"base64 with leading whitespace", "  \n TGB64:1.0:eyJ0eXBlIjoibWV0YWRhdGEifQ==", Base64},
		{"lowercase prefix is not base64", "tgb64:1.0:abc", nil},
		{"json object", `{"name":"alice","age":3}`, JSON},
		{"pretty json", "{\n  \"name\": \"alice\"\n}", JSON},
		{"json array", `[{"a":1},{"a":2}]`, JSON},
		{"jsonl", "{\"a\":1}\n{\"a\":2}\n{\"a\":3}", JSONL},
		{"csv", "id,name\n1,alice\n2,bob", CSV},
		{"tsv", "id\tname\n1\talice", TSV},
		{"yaml document marker", "---\nname: alice", YAML},
		{"yaml mapping", "name: alice\nage: 3", YAML},
		{"xlsx zip", "PK\x03\x04\x14\x00\x06\x00", XLSX},
		{"empty", "", nil},
		{"whitespace", "  \n\t ", nil},
		{"plain word", "hello", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detector.Detect([]byte(tt.data))
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.Equal(t, tt.want.Name(), got.Name())
			}
		})
	}
}

func TestDetectorCandidates(t *testing.T) {
	detector := NewDetector(CSV, JSON)

	assert.Nil(t, detector.Detect([]byte("id\tname\n1\talice")), "tsv is not a candidate")
	assert.Equal(t, "csv", detector.Detect([]byte("id,name")).Name())
}

func TestDetectorTruncatesSample(t *testing.T) {
	line := `{"type":"row","value":"` + strings.Repeat("x", 64) + `"}` + "\n"
	data := strings.Repeat(line, 200)

	got := NewDetector().Detect([]byte(data))
	if assert.NotNil(t, got) {
		assert.Equal(t, "jsonl", got.Name())
	}
}
