// Package planfile reads training plans written by hand in TOML or YAML and
// turns them into template drafts.
package planfile

import (
	"alcyxob/fitness-coach/internal/service"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Plan is the file layout. An exercise lists its sets either explicitly or
// with the sets/reps shorthand ("3" sets of "8-12").
type Plan struct {
	Title string `toml:"title" yaml:"title"`
	Days  []Day  `toml:"day" yaml:"days"`
}

type Day struct {
	Title     string     `toml:"title" yaml:"title"`
	Exercises []Exercise `toml:"exercise" yaml:"exercises"`
}

type Exercise struct {
	Name        string `toml:"name" yaml:"name"`
	Description string `toml:"description" yaml:"description"`
	VideoURL    string `toml:"video_url" yaml:"video_url"`
	Comment     string `toml:"comment" yaml:"comment"`

	Sets int    `toml:"sets" yaml:"sets"`
	Reps string `toml:"reps" yaml:"reps"`
	Rest *int   `toml:"rest_seconds" yaml:"rest_seconds"`

	SetList []Set `toml:"set" yaml:"set"`
}

type Set struct {
	MinReps     int  `toml:"min_reps" yaml:"min_reps"`
	MaxReps     int  `toml:"max_reps" yaml:"max_reps"`
	RestSeconds *int `toml:"rest_seconds" yaml:"rest_seconds"`
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported plan file extension %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}
}

// Load reads and parses a plan file.
func Load(path string) (*Plan, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, format)
}

// Parse decodes a plan. Unknown keys are rejected so typos do not silently
// drop data.
func Parse(data []byte, format Format) (*Plan, error) {
	var plan Plan
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &plan)
		if err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parse toml: unknown key %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&plan); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown plan format %q", format)
	}
	return &plan, nil
}

// Draft converts the plan into the input of service.TemplateService.ImportTemplate.
// Set numbers follow the order of the file.
func (p *Plan) Draft() (service.TemplateDraft, error) {
	draft := service.TemplateDraft{Title: strings.TrimSpace(p.Title)}
	for i, d := range p.Days {
		day := service.DayDraft{Title: d.Title}
		for j, ex := range d.Exercises {
			sets, err := ex.sets()
			if err != nil {
				return draft, fmt.Errorf("day %d exercise %d (%s): %w", i+1, j+1, ex.Name, err)
			}
			day.Exercises = append(day.Exercises, service.ExerciseInput{
				Name:        strings.TrimSpace(ex.Name),
				Description: ex.Description,
				VideoURL:    ex.VideoURL,
				Comment:     ex.Comment,
				Sets:        sets,
			})
		}
		draft.Days = append(draft.Days, day)
	}
	return draft, nil
}

func (ex Exercise) sets() ([]service.SetInput, error) {
	if len(ex.SetList) > 0 {
		if ex.Sets != 0 || ex.Reps != "" {
			return nil, fmt.Errorf("use either sets/reps or set entries, not both")
		}
		out := make([]service.SetInput, len(ex.SetList))
		for i, s := range ex.SetList {
			rest := s.RestSeconds
			if rest == nil {
				rest = ex.Rest
			}
			max := s.MaxReps
			if max == 0 {
				max = s.MinReps
			}
			out[i] = service.SetInput{SetNumber: i + 1, MinReps: s.MinReps, MaxReps: max, RestSeconds: rest}
		}
		return out, nil
	}
	if ex.Sets == 0 && ex.Reps == "" {
		return nil, nil
	}
	if ex.Sets < 1 {
		return nil, fmt.Errorf("sets must be at least 1")
	}
	min, max, err := ParseReps(ex.Reps)
	if err != nil {
		return nil, err
	}
	out := make([]service.SetInput, ex.Sets)
	for i := range out {
		out[i] = service.SetInput{SetNumber: i + 1, MinReps: min, MaxReps: max, RestSeconds: ex.Rest}
	}
	return out, nil
}

// ParseReps reads "10" or "8-12".
func ParseReps(s string) (min, max int, err error) {
	s = strings.TrimSpace(s)
	lo, hi, found := strings.Cut(s, "-")
	if min, err = strconv.Atoi(strings.TrimSpace(lo)); err != nil {
		return 0, 0, fmt.Errorf("invalid reps %q", s)
	}
	max = min
	if found {
		if max, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
			return 0, 0, fmt.Errorf("invalid reps %q", s)
		}
	}
	if min < 1 || max < min {
		return 0, 0, fmt.Errorf("invalid reps range %q", s)
	}
	return min, max, nil
}
