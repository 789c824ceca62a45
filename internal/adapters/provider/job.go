package provider

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	_ "time/tzdata" // job timezones must resolve without system zoneinfo

	"gopkg.in/yaml.v3"

	"github.com/okian/vedichart/internal/domain/ephemeris"
	"github.com/okian/vedichart/internal/domain/model"
)

// ErrInvalidJob wraps every job decoding failure.
var ErrInvalidJob = errors.New("invalid job")

// localLayout is accepted for birth times without a UTC offset; the job's
// timezone (default UTC) supplies the zone.
const localLayout = "2006-01-02T15:04:05"

// job is the on-disk shape of one chart request.
//
// ephemeris is either one combined Horizons text, a mapping from body name
// to a value (raw text, a Horizons API envelope or a numeric record), or a
// list of such values. Mapping order is kept.
type job struct {
	ID        string         `yaml:"id"`
	UserID    string         `yaml:"user_id"`
	BirthTime string         `yaml:"birth_time"`
	Timezone  string         `yaml:"timezone"`
	Location  model.Location `yaml:"location"`
	Ephemeris yaml.Node      `yaml:"ephemeris"`
}

// DecodeJobs reads every YAML (or JSON) document in r as a chart request.
func DecodeJobs(r io.Reader) ([]model.Request, error) {
	dec := yaml.NewDecoder(r)
	var out []model.Request
	for {
		var j job
		err := dec.Decode(&j)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidJob, err)
		}
		req, err := j.request()
		if err != nil {
			return nil, fmt.Errorf("%w: document %d: %w", ErrInvalidJob, len(out)+1, err)
		}
		out = append(out, req)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidJob)
	}
	return out, nil
}

func (j *job) request() (model.Request, error) {
	birth, err := j.birthTime()
	if err != nil {
		return model.Request{}, err
	}
	inputs, err := inputs(&j.Ephemeris)
	if err != nil {
		return model.Request{}, err
	}
	return model.Request{
		ID:        j.ID,
		UserID:    j.UserID,
		BirthTime: birth,
		Location:  j.Location,
		Ephemeris: inputs,
	}, nil
}

func (j *job) birthTime() (time.Time, error) {
	raw := strings.TrimSpace(j.BirthTime)
	if raw == "" {
		return time.Time{}, model.ErrMissingBirthTime
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	loc := time.UTC
	if j.Timezone != "" {
		l, err := time.LoadLocation(j.Timezone)
		if err != nil {
			return time.Time{}, fmt.Errorf("timezone %q: %w", j.Timezone, err)
		}
		loc = l
	}
	t, err := time.ParseInLocation(localLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("birth_time %q: %w", raw, err)
	}
	return t, nil
}

func inputs(n *yaml.Node) ([]ephemeris.Input, error) {
	switch n.Kind {
	case 0:
		return nil, model.ErrNoEphemeris
	case yaml.ScalarNode:
		return ephemeris.SplitCombined(n.Value), nil
	case yaml.MappingNode:
		out := make([]ephemeris.Input, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			in, err := input(key, n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out = append(out, in)
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]ephemeris.Input, 0, len(n.Content))
		for _, item := range n.Content {
			in, err := input("", item)
			if err != nil {
				return nil, err
			}
			out = append(out, in)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("ephemeris: unsupported node at line %d", n.Line)
	}
}

func input(key string, n *yaml.Node) (ephemeris.Input, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return ephemeris.Input{}, fmt.Errorf("ephemeris %s: %w", key, err)
	}
	if m, ok := v.(map[string]any); ok && key == "" {
		if name, ok := m["name"].(string); ok {
			key = name
		}
	}
	return ephemeris.FromValue(key, v)
}
