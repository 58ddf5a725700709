package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/amp-labs/amp-sync/probe"
	"github.com/amp-labs/amp-sync/synchronize"
	"gopkg.in/yaml.v3"
)

var (
	errInvalidPlan  = errors.New("invalid plan")
	errInvalidCheck = errors.New("invalid check")
)

// Plan is a set of checks evaluated together under one deadline.
//
//	description: login result
//	timeout: 20s
//	interval: 500ms
//	mode: any
//	checks:
//	  - name: success
//	    file: /tmp/page.txt
//	    contains: Success
//	  - name: failure
//	    command: [grep, -q, "Login failed", /tmp/page.txt]
type Plan struct {
	Description string        `yaml:"description"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
	Mode        string        `yaml:"mode"`
	Checks      []CheckSpec   `yaml:"checks"`
}

// CheckSpec is one check in a plan: either a command or a file, optionally
// required to contain some text.
type CheckSpec struct {
	Name     string   `yaml:"name"`
	Command  []string `yaml:"command"`
	File     string   `yaml:"file"`
	Contains string   `yaml:"contains"`
}

// LoadPlan reads and parses a plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}

	return ParsePlan(data)
}

// ParsePlan parses a YAML plan. Unknown keys are rejected.
func ParsePlan(data []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	plan := &Plan{}
	if err := dec.Decode(plan); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidPlan, err)
	}

	return plan, nil
}

// Validate checks the plan for settings that can never work.
func (p *Plan) Validate() error {
	if p.Timeout < 0 || p.Interval < 0 {
		return fmt.Errorf("%w: timeout and interval must not be negative", errInvalidPlan)
	}

	switch p.Mode {
	case "", "all", "any":
	default:
		return fmt.Errorf("%w: mode must be 'any' or 'all', got %q", errInvalidPlan, p.Mode)
	}

	for i, spec := range p.Checks {
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("check %d: %w", i, err)
		}
	}

	return nil
}

// Check combines the plan's checks according to its mode (default "all").
func (p *Plan) Check() (synchronize.Check, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	checks := make([]synchronize.Check, 0, len(p.Checks))
	for _, spec := range p.Checks {
		checks = append(checks, spec.Check())
	}

	if p.Mode == "any" {
		return synchronize.Any(checks...), nil
	}

	return synchronize.All(checks...), nil
}

// Validate requires exactly one of command and file.
func (s CheckSpec) Validate() error {
	hasCommand := len(s.Command) > 0
	hasFile := s.File != ""

	if hasCommand == hasFile {
		return fmt.Errorf("%w: exactly one of command and file is required", errInvalidCheck)
	}

	return nil
}

func (s CheckSpec) String() string {
	if s.Name != "" {
		return s.Name
	}

	target := s.File
	if len(s.Command) > 0 {
		target = strings.Join(s.Command, " ")
	}

	if s.Contains != "" {
		return fmt.Sprintf("%q in %s", s.Contains, target)
	}

	return target
}

// Check builds the probe described by s, labelling its errors with the
// check's name.
func (s CheckSpec) Check() synchronize.Check {
	var check synchronize.Check

	switch {
	case len(s.Command) > 0 && s.Contains != "":
		check = probe.OutputContains(s.Contains, s.Command[0], s.Command[1:]...)
	case len(s.Command) > 0:
		check = probe.Command(s.Command[0], s.Command[1:]...)
	case s.Contains != "":
		check = probe.FileContains(s.File, s.Contains)
	default:
		check = probe.FileExists(s.File)
	}

	label := s.String()

	return func(ctx context.Context) error {
		if err := check(ctx); err != nil {
			return fmt.Errorf("%s: %w", label, err)
		}

		return nil
	}
}
