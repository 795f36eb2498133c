package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"briefdeck/internal/slides"
)

var codeFence = regexp.MustCompile("```[a-zA-Z]*")

// StripFences removes Markdown code-fence markers left around model output.
func StripFences(s string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(s, ""))
}

type deckPayload struct {
	Slides []json.RawMessage `json:"slides"`
}

// FromJSON decodes the model's {"slides":[...]} payload. Surrounding prose and code fences
// are ignored. A payload without a non-empty slides array is an error.
func FromJSON(output string) ([]slides.Slide, error) {
	body := StripFences(output)
	if body == "" {
		return nil, errors.New("empty model output")
	}

	var raws []json.RawMessage
	start, end := strings.Index(body, "{"), strings.LastIndex(body, "}")
	if arr := strings.Index(body, "["); arr >= 0 && (start < 0 || arr < start) {
		// A bare array of slide objects.
		last := strings.LastIndex(body, "]")
		if last <= arr {
			return nil, errors.New("unterminated slide array")
		}
		if err := json.Unmarshal([]byte(body[arr:last+1]), &raws); err != nil {
			return nil, fmt.Errorf("decode slide array: %w", err)
		}
	} else {
		if start < 0 || end <= start {
			return nil, errors.New("no JSON object in model output")
		}
		var payload deckPayload
		if err := json.Unmarshal([]byte(body[start:end+1]), &payload); err != nil {
			return nil, fmt.Errorf("decode slides payload: %w", err)
		}
		raws = payload.Slides
	}

	if len(raws) == 0 {
		return nil, errors.New("slides payload has no slides")
	}

	out, skipped := slides.DecodeAll(raws)
	if len(out) == 0 {
		return nil, fmt.Errorf("none of %d slide entries could be decoded", skipped)
	}
	return out, nil
}
