package ephemeris

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is a position a provider already reduced to numbers.
type Record struct {
	Name       string  `json:"name,omitempty" yaml:"name,omitempty"`
	JulianDate float64 `json:"jd" yaml:"jd"`
	RA         float64 `json:"ra" yaml:"ra"`
	DEC        float64 `json:"dec" yaml:"dec"`
}

// Input is one provider entry, either raw text or a Record, tagged with
// the key the provider filed it under.
type Input struct {
	Key    string
	Text   string
	Record *Record
}

// FromText wraps a raw ephemeris block.
func FromText(key, raw string) Input {
	return Input{Key: key, Text: raw}
}

// FromRecord wraps a pre-parsed record.
func FromRecord(key string, r Record) Input {
	return Input{Key: key, Record: &r}
}

// FromValue normalizes a decoded provider value: a raw string, a Horizons
// API envelope ({"result": "..."}), a numeric record ({"jd","ra","dec"}),
// or a Record.
func FromValue(key string, v any) (Input, error) {
	switch val := v.(type) {
	case string:
		return FromText(key, val), nil
	case Record:
		return FromRecord(key, val), nil
	case *Record:
		if val == nil {
			break
		}
		return FromRecord(key, *val), nil
	case map[string]any:
		if result, ok := val["result"].(string); ok {
			return FromText(key, result), nil
		}
		if _, ok := val["ra"]; ok {
			r, err := recordFromMap(val)
			if err != nil {
				return Input{}, &ParseError{Body: key, Kind: ErrNumericFormat, Err: err}
			}
			return FromRecord(key, r), nil
		}
	}
	return Input{}, &ParseError{Body: key, Kind: ErrUnsupportedValue, Field: fmt.Sprintf("%T", v)}
}

func recordFromMap(m map[string]any) (Record, error) {
	var (
		r   Record
		err error
	)
	if name, ok := m["name"].(string); ok {
		r.Name = name
	}
	if r.JulianDate, err = number(m, "jd"); err != nil {
		return Record{}, err
	}
	if r.RA, err = number(m, "ra"); err != nil {
		return Record{}, err
	}
	if r.DEC, err = number(m, "dec"); err != nil {
		return Record{}, err
	}
	return r, nil
}

func number(m map[string]any, key string) (float64, error) {
	switch v := m[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case nil:
		return 0, fmt.Errorf("field %s missing", key)
	default:
		return 0, fmt.Errorf("field %s has type %T", key, v)
	}
}

// SplitCombined splits a text holding several ephemerides into one Input
// per "Target body name:" header. Text before the first header stays with
// the first block; text without headers comes back as a single Input.
func SplitCombined(raw string) []Input {
	var starts []int
	offset := 0
	for _, line := range strings.SplitAfter(raw, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), targetHeader) {
			starts = append(starts, offset)
		}
		offset += len(line)
	}
	if len(starts) <= 1 {
		return []Input{inputFromSegment(raw)}
	}

	starts[0] = 0
	out := make([]Input, 0, len(starts))
	for i, s := range starts {
		end := len(raw)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		out = append(out, inputFromSegment(raw[s:end]))
	}
	return out
}

func inputFromSegment(seg string) Input {
	key := ""
	if name, ok := bodyName(seg); ok {
		key = name
	}
	return FromText(key, seg)
}

// Resolve turns an Input into a Block. Raw text goes through Parse; a
// block without a header takes the provider key as its name. Only a block
// named by neither source keeps the UnknownBody fallback.
func Resolve(in Input) (Block, error) {
	if in.Record != nil {
		return resolveRecord(in)
	}

	b, err := Parse(in.Text)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) && pe.Body == "" {
			pe.Body = in.Key
		}
		return Block{}, err
	}
	if !b.NameResolved && in.Key != "" {
		b.Name, b.NameResolved = in.Key, true
	}
	return b, nil
}

func resolveRecord(in Input) (Block, error) {
	r := in.Record
	for field, v := range map[string]float64{"jd": r.JulianDate, "ra": r.RA, "dec": r.DEC} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Block{}, &ParseError{Body: in.Key, Kind: ErrNumericFormat, Field: field}
		}
	}

	b := Block{JulianDate: r.JulianDate, RA: r.RA, DEC: r.DEC}
	switch {
	case r.Name != "":
		b.Name, b.NameResolved = r.Name, true
	case in.Key != "":
		b.Name, b.NameResolved = in.Key, true
	default:
		b.Name = UnknownBody
	}
	return b, nil
}
