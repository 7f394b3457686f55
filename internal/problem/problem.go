package problem

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/funvibe/rangetyck/internal/config"
	"github.com/funvibe/rangetyck/internal/solver"
	"github.com/funvibe/rangetyck/internal/symbols"
	"github.com/funvibe/rangetyck/internal/token"
	"github.com/funvibe/rangetyck/internal/typesystem"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// File is the on-disk problem format.
type File struct {
	// File names the source the spans point into. Defaults to the problem
	// file's base name.
	File         string                 `yaml:"file,omitempty"`
	Declarations map[string]Declaration `yaml:"declarations,omitempty"`
	Constraints  []ConstraintSpec       `yaml:"constraints"`
}

// Declaration describes one nominal type.
type Declaration struct {
	Params  []string          `yaml:"params,omitempty"`
	Fields  map[string]string `yaml:"fields,omitempty"`
	Type    string            `yaml:"type,omitempty"`
	Textual bool              `yaml:"textual,omitempty"`
	Numeric bool              `yaml:"numeric,omitempty"`
}

// ConstraintSpec is one obligation. Which fields are required depends on
// Kind.
type ConstraintSpec struct {
	Kind     string   `yaml:"kind"`
	At       string   `yaml:"at"`
	Expected string   `yaml:"expected,omitempty"`
	Actual   string   `yaml:"actual,omitempty"`
	Into     string   `yaml:"into,omitempty"`
	From     string   `yaml:"from,omitempty"`
	ID       string   `yaml:"id,omitempty"`
	Target   string   `yaml:"target,omitempty"`
	Of       string   `yaml:"of,omitempty"`
	Field    string   `yaml:"field,omitempty"`
	Type     string   `yaml:"type,omitempty"`
	Params   []string `yaml:"params,omitempty"`
	Template string   `yaml:"template,omitempty"`
}

// Problem is a parsed problem ready for the solver.
type Problem struct {
	Path        string
	File        string
	Symbols     *symbols.Table
	Constraints []solver.Constraint
	// Counts is the seed counter advanced past every placeholder minted
	// while reading the constraints.
	Counts map[token.Span]int
	// Vars maps each placeholder as written ("?x", "'T") to its identity.
	Vars map[string]typesystem.UniVar
}

// VarNames returns the placeholder names in sorted order.
func (p *Problem) VarNames() []string {
	names := lo.Keys(p.Vars)
	sort.Strings(names)
	return names
}

// VarType returns the placeholder written as name.
func (p *Problem) VarType(name string) typesystem.Type {
	id := p.Vars[name]
	if strings.HasPrefix(name, "'") {
		return typesystem.RigidVar(id)
	}
	return typesystem.Var(id)
}

// Load reads and parses a problem file.
func Load(path string, counts map[token.Span]int, prelude *symbols.Table) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading problem %s: %w", path, err)
	}
	return Parse(data, path, counts, prelude)
}

// Parse parses problem YAML. counts seeds placeholder minting and is not
// modified; prelude, when non-nil, is the outer scope of the declarations.
func Parse(data []byte, path string, counts map[token.Span]int, prelude *symbols.Table) (*Problem, error) {
	f, err := Decode(data, path)
	if err != nil {
		return nil, err
	}
	return f.Build(path, counts, prelude)
}

// Decode reads and validates problem YAML without interpreting any type.
// Callers that need the source file name before minting placeholders
// decode first and Build afterwards.
func Decode(data []byte, path string) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if f.File == "" {
		f.File = filepath.Base(path)
	}
	if err := f.validate(path); err != nil {
		return nil, err
	}
	return &f, nil
}

// Build turns a decoded file into declarations and constraints.
func (f *File) Build(path string, counts map[token.Span]int, prelude *symbols.Table) (*Problem, error) {
	b := &builder{
		problem: &Problem{
			Path:    path,
			File:    f.File,
			Symbols: symbols.NewEnclosedTable(prelude),
			Counts:  lo.Assign(counts),
			Vars:    make(map[string]typesystem.UniVar),
		},
	}
	if err := b.declare(path, f.Declarations); err != nil {
		return nil, err
	}
	for i, cs := range f.Constraints {
		c, err := b.constraint(f.File, cs)
		if err != nil {
			return nil, fmt.Errorf("%s: constraints[%d]: %w", path, i, err)
		}
		b.problem.Constraints = append(b.problem.Constraints, c)
	}
	return b.problem, nil
}

// validate checks required fields per kind before any type is parsed.
func (f *File) validate(path string) error {
	if len(f.Constraints) == 0 {
		return fmt.Errorf("%s: no constraints", path)
	}
	for i, c := range f.Constraints {
		if !lo.Contains(config.ConstraintKinds, c.Kind) {
			return fmt.Errorf("%s: constraints[%d]: unknown kind %q (want one of %s)",
				path, i, c.Kind, strings.Join(config.ConstraintKinds, ", "))
		}
		if c.At == "" {
			return fmt.Errorf("%s: constraints[%d]: missing at", path, i)
		}
		for field, value := range c.required() {
			if value == "" {
				return fmt.Errorf("%s: constraints[%d]: %s constraint needs %s", path, i, c.Kind, field)
			}
		}
	}
	for name, d := range f.Declarations {
		if d.Type != "" && len(d.Fields) > 0 {
			return fmt.Errorf("%s: declarations.%s: type and fields are exclusive", path, name)
		}
	}
	return nil
}

func (c *ConstraintSpec) required() map[string]string {
	switch c.Kind {
	case config.KindAssignable:
		return map[string]string{"into": c.Into, "from": c.From}
	case config.KindEqual:
		return map[string]string{"expected": c.Expected, "actual": c.Actual}
	case config.KindField:
		return map[string]string{"target": c.Target, "of": c.Of, "field": c.Field}
	case config.KindInstantiated:
		return map[string]string{"type": c.Type, "template": c.Template}
	default:
		return map[string]string{"type": c.Type}
	}
}

type builder struct {
	problem *Problem
}

func (b *builder) declare(path string, decls map[string]Declaration) error {
	names := lo.Keys(decls)
	sort.Strings(names)

	for _, name := range names {
		d := decls[name]
		shape := symbols.Shape{
			Params:  lo.Map(d.Params, func(p string, _ int) typesystem.Ref { return typesystem.Ref(p) }),
			Textual: d.Textual,
			Numeric: d.Numeric,
		}
		if d.Type != "" {
			body, err := ParseType(d.Type)
			if err != nil {
				return fmt.Errorf("%s: declarations.%s: %w", path, name, err)
			}
			shape.Body = body
		}
		if d.Fields != nil {
			shape.Fields = make(map[string]typesystem.Type, len(d.Fields))
			for field, text := range d.Fields {
				t, err := ParseType(text)
				if err != nil {
					return fmt.Errorf("%s: declarations.%s.%s: %w", path, name, field, err)
				}
				shape.Fields[field] = t
			}
		}
		if err := b.problem.Symbols.Register(typesystem.Ref(name), shape); err != nil {
			return fmt.Errorf("%s: declarations: %w", path, err)
		}
	}
	return nil
}

func (b *builder) constraint(file string, c ConstraintSpec) (solver.Constraint, error) {
	span, err := token.ParseSpan(file, c.At)
	if err != nil {
		return nil, err
	}
	mint := b.minter(span)
	parse := func(field, text string) (typesystem.Type, error) {
		t, err := parseType(text, mint)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		return t, nil
	}

	switch c.Kind {
	case config.KindAssignable:
		into, err := parse("into", c.Into)
		if err != nil {
			return nil, err
		}
		from, err := parse("from", c.From)
		if err != nil {
			return nil, err
		}
		id := solver.CoercionID(c.ID)
		if id == "" {
			id = solver.CoercionID(span.String())
		}
		return solver.Assignable{Span: span, ID: id, Into: into, From: from}, nil

	case config.KindEqual:
		expected, err := parse("expected", c.Expected)
		if err != nil {
			return nil, err
		}
		actual, err := parse("actual", c.Actual)
		if err != nil {
			return nil, err
		}
		return solver.Equal{Span: span, Expected: expected, Actual: actual}, nil

	case config.KindField:
		target, err := parse("target", c.Target)
		if err != nil {
			return nil, err
		}
		of, err := parse("of", c.Of)
		if err != nil {
			return nil, err
		}
		return solver.Field{Span: span, Target: target, Of: of, Name: c.Field}, nil

	case config.KindInstantiated:
		ty, err := parse("type", c.Type)
		if err != nil {
			return nil, err
		}
		body, err := parse("template", c.Template)
		if err != nil {
			return nil, err
		}
		if dup := lo.FindDuplicates(c.Params); len(dup) > 0 {
			return nil, fmt.Errorf("params: %s repeated", dup[0])
		}
		template := solver.Template{
			Params: lo.Map(c.Params, func(p string, _ int) typesystem.Ref { return typesystem.Ref(p) }),
			Body:   body,
		}
		return solver.Instantiated{Span: span, Type: ty, Template: template}, nil
	}

	ty, err := parse("type", c.Type)
	if err != nil {
		return nil, err
	}
	switch c.Kind {
	case config.KindUnit:
		return solver.UnitLike{Span: span, Type: ty}, nil
	case config.KindNumeric:
		return solver.Numeric{Span: span, Type: ty}, nil
	case config.KindTextual:
		return solver.Textual{Span: span, Type: ty}, nil
	default:
		return solver.TypeNumeric{Span: span, Type: ty}, nil
	}
}

// minter names placeholders problem-wide. The first occurrence of a name
// mints an identity at span, advancing the counter the solver continues
// from; later occurrences anywhere reuse it.
func (b *builder) minter(span token.Span) minter {
	return func(mode typesystem.Mode, name string) typesystem.TVar {
		key := "?" + name
		if mode == typesystem.Rigid {
			key = "'" + name
		}
		id, ok := b.problem.Vars[key]
		if !ok {
			id = typesystem.UniVar{Span: span, Count: b.problem.Counts[span]}
			b.problem.Counts[span]++
			b.problem.Vars[key] = id
		}
		return typesystem.TVar{Mode: mode, ID: id}
	}
}
