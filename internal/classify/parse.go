package classify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrMalformedResponse is returned when the model output holds no JSON object.
var ErrMalformedResponse = errors.New("malformed model response")

// extraction is the JSON object the model is asked to return.
type extraction struct {
	IsSecurityIncident flexBool `json:"is_security_incident"`
	IsFollowUp         flexBool `json:"is_follow_up"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	State              string   `json:"state"`
	LGA                string   `json:"lga"`
	Fatalities         flexInt  `json:"fatalities"`
	Injuries           flexInt  `json:"injuries"`
	Kidnapped          flexInt  `json:"kidnapped"`
	IncidentType       string   `json:"incident_type"`
	Severity           string   `json:"severity"`
	Date               string   `json:"date"`
}

// parseExtraction strips markdown fences and decodes the first JSON object in raw.
func parseExtraction(raw string) (extraction, error) {
	var out extraction

	cleaned := stripFences(raw)
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return out, ErrMalformedResponse
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned[start : end+1])))
	if err := dec.Decode(&out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out, nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

var leadingDigits = regexp.MustCompile(`\d+`)

// flexInt accepts numbers, numeric strings ("about 12") and null. Negative values and
// values of maxCount or more decode as zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	*f = 0
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		if n > 0 && n < maxCount {
			*f = flexInt(n)
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("count must be a number: %s", raw)
	}
	if strings.HasPrefix(strings.TrimSpace(s), "-") {
		return nil
	}
	if m := leadingDigits.FindString(s); m != "" {
		v, err := strconv.Atoi(m)
		if err == nil && v < maxCount {
			*f = flexInt(v)
		}
	}
	return nil
}

// flexBool accepts booleans, "true"/"yes" strings and null.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	*f = false
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "1":
			*f = true
		}
	}
	return nil
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"January 2, 2006",
	"2 January 2006",
	"02/01/2006",
}

// parseEventDate reads the model's date. Dates after the publication day are
// clamped to the publication time; unknown dates use it as well.
func parseEventDate(value string, published time.Time) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if !published.IsZero() && t.After(published.Add(24*time.Hour)) {
			return published
		}
		return t
	}
	return published
}

// truncate cuts s to at most limit runes.
func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}
