package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario: a named step sequence plus the
// assertions that must hold once it has run.
type Scenario struct {
	// Name uniquely identifies this scenario; it is also the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// TrimThreshold overrides the compaction threshold for every session in
	// the scenario. Zero means DefaultTrimThreshold.
	TrimThreshold int64 `yaml:"trim_threshold,omitempty"`

	// Steps is the ordered step sequence.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one scenario step. Exactly one field must be set.
type Step struct {
	// Attach creates a session under a label, bound to a fresh document.
	Attach *AttachStep `yaml:"attach,omitempty"`

	// Insert performs a local edit on a session's document.
	Insert *InsertStep `yaml:"insert,omitempty"`

	// Fetch drains newer rows into the session's document.
	Fetch *SessionRef `yaml:"fetch,omitempty"`

	// StoreState runs compaction, optionally forced.
	StoreState *StoreStateStep `yaml:"store_state,omitempty"`

	// SetMeta stores a metadata value.
	SetMeta *MetaStep `yaml:"set_meta,omitempty"`

	// DelMeta removes a metadata value.
	DelMeta *MetaStep `yaml:"del_meta,omitempty"`

	// Detach destroys a session.
	Detach *SessionRef `yaml:"detach,omitempty"`

	// ClearDoc erases one document's partition out-of-band.
	ClearDoc *ClearDocStep `yaml:"clear_doc,omitempty"`
}

// AttachStep binds the label to a new session on a fresh document. Reopening
// a document is expressed as detach + attach under a new label with the same
// doc name.
type AttachStep struct {
	Session string `yaml:"session"`
	Doc     string `yaml:"doc"`
}

// InsertStep adds one entry to the labeled session's document as a local
// edit.
type InsertStep struct {
	Session string `yaml:"session"`
	Entry   string `yaml:"entry"`
}

// SessionRef names a previously attached session.
type SessionRef struct {
	Session string `yaml:"session"`
}

// StoreStateStep triggers compaction on the labeled session.
type StoreStateStep struct {
	Session string `yaml:"session"`
	Force   bool   `yaml:"force,omitempty"`
}

// MetaStep reads or writes per-document metadata through a session.
type MetaStep struct {
	Session string `yaml:"session"`
	Key     string `yaml:"key"`
	Value   string `yaml:"value,omitempty"`
}

// ClearDocStep erases the named document's partition from the shared file.
type ClearDocStep struct {
	Doc string `yaml:"doc"`
}

// Assertion validates final state after all steps ran.
//
// Supported types:
//   - row_count: live rows in the session's partition == Want
//   - entries: the session document's sorted entry list == WantList
//   - meta: metadata value under Key == WantValue (absent when WantValue "")
//   - synced: session sync flag == WantBool
type Assertion struct {
	Type      string   `yaml:"type"`
	Session   string   `yaml:"session"`
	Key       string   `yaml:"key,omitempty"`
	Want      int64    `yaml:"want,omitempty"`
	WantList  []string `yaml:"want_list,omitempty"`
	WantValue string   `yaml:"want_value,omitempty"`
	WantBool  bool     `yaml:"want_bool,omitempty"`
}

// LoadScenario parses one scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}

	return &sc, nil
}

// LoadScenarios parses every *.yaml file in a directory, sorted by file name
// for deterministic test ordering.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("glob scenarios: %w", err)
	}
	sort.Strings(matches)

	var scenarios []*Scenario
	for _, path := range matches {
		sc, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

// Validate checks structural scenario invariants before execution.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario has no name")
	}
	if strings.ContainsAny(s.Name, "/\\ ") {
		return fmt.Errorf("scenario name %q must be a plain file-safe token", s.Name)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario has no steps")
	}

	attached := map[string]bool{}
	for i, step := range s.Steps {
		switch {
		case step.Attach != nil:
			if step.Attach.Session == "" || step.Attach.Doc == "" {
				return fmt.Errorf("step %d: attach needs session and doc", i)
			}
			if attached[step.Attach.Session] {
				return fmt.Errorf("step %d: session %q attached twice", i, step.Attach.Session)
			}
			attached[step.Attach.Session] = true
		case step.Insert != nil:
			if !attached[step.Insert.Session] {
				return fmt.Errorf("step %d: insert on unknown session %q", i, step.Insert.Session)
			}
		case step.Fetch != nil:
			if !attached[step.Fetch.Session] {
				return fmt.Errorf("step %d: fetch on unknown session %q", i, step.Fetch.Session)
			}
		case step.StoreState != nil:
			if !attached[step.StoreState.Session] {
				return fmt.Errorf("step %d: store_state on unknown session %q", i, step.StoreState.Session)
			}
		case step.SetMeta != nil:
			if !attached[step.SetMeta.Session] {
				return fmt.Errorf("step %d: set_meta on unknown session %q", i, step.SetMeta.Session)
			}
		case step.DelMeta != nil:
			if !attached[step.DelMeta.Session] {
				return fmt.Errorf("step %d: del_meta on unknown session %q", i, step.DelMeta.Session)
			}
		case step.Detach != nil:
			if !attached[step.Detach.Session] {
				return fmt.Errorf("step %d: detach on unknown session %q", i, step.Detach.Session)
			}
		case step.ClearDoc != nil:
			if step.ClearDoc.Doc == "" {
				return fmt.Errorf("step %d: clear_doc needs doc", i)
			}
		default:
			return fmt.Errorf("step %d: empty step", i)
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case "row_count", "entries", "meta", "synced":
		default:
			return fmt.Errorf("assertion %d: unknown type %q", i, a.Type)
		}
		if !attached[a.Session] {
			return fmt.Errorf("assertion %d: unknown session %q", i, a.Session)
		}
	}

	return nil
}
