// Package loader reads signaling networks from YAML.
//
// A network file lists species (with per-species defaults) and reactions in
// the rule form "A & !B => C": inputs joined by & are AND-combined, a
// leading ! marks an inhibiting input, and "=> A" is a constant basal input.
// Several reactions onto the same species are OR-combined.
//
// Instead of reactions a file may give a signed regulator->target matrix
// under weights, with an optional per-species rules list of "or"/"and".
package loader

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/netsens/internal/hill"
	"github.com/san-kum/netsens/internal/network"
)

//go:embed networks/*.yaml
var builtinFS embed.FS

var ErrUnknownNetwork = errors.New("loader: unknown network")

// Network is a loaded model plus the analysis hints its file carried.
type Network struct {
	Model       *network.Model
	Description string
	Phenotype   string
	Outputs     []string
}

type defaults struct {
	Tau  *float64 `yaml:"tau"`
	Ymax *float64 `yaml:"ymax"`
	Y0   *float64 `yaml:"y0"`
	N    *float64 `yaml:"n"`
	EC50 *float64 `yaml:"ec50"`
}

type speciesDoc struct {
	Name string   `yaml:"name"`
	Tau  *float64 `yaml:"tau,omitempty"`
	Ymax *float64 `yaml:"ymax,omitempty"`
	Y0   *float64 `yaml:"y0,omitempty"`
	N    *float64 `yaml:"n,omitempty"`
	EC50 *float64 `yaml:"ec50,omitempty"`
}

type reactionDoc struct {
	ID     string  `yaml:"id,omitempty"`
	Rule   string  `yaml:"rule"`
	Weight float64 `yaml:"weight"`
	N      float64 `yaml:"n,omitempty"`
	EC50   float64 `yaml:"ec50,omitempty"`
}

type document struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Phenotype   string        `yaml:"phenotype,omitempty"`
	Outputs     []string      `yaml:"outputs,omitempty"`
	Defaults    defaults      `yaml:"defaults,omitempty"`
	Species     []speciesDoc  `yaml:"species"`
	Reactions   []reactionDoc `yaml:"reactions"`
	Weights     [][]float64   `yaml:"weights,omitempty"`
	Rules       []string      `yaml:"rules,omitempty"`
}

func pick(v, d *float64, fallback float64) float64 {
	switch {
	case v != nil:
		return *v
	case d != nil:
		return *d
	}
	return fallback
}

// Parse decodes a YAML network and validates its topology.
func Parse(data []byte) (*Network, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse network: %w", err)
	}

	m := &network.Model{Name: doc.Name}
	index := make(map[string]int, len(doc.Species))
	for i, s := range doc.Species {
		m.Species = append(m.Species, network.Species{
			Name: strings.TrimSpace(s.Name),
			Tau:  pick(s.Tau, doc.Defaults.Tau, 1),
			Ymax: pick(s.Ymax, doc.Defaults.Ymax, 1),
			Y0:   pick(s.Y0, doc.Defaults.Y0, 0),
			N:    pick(s.N, doc.Defaults.N, 1.4),
			EC50: pick(s.EC50, doc.Defaults.EC50, 0.5),
		})
		index[m.Species[i].Name] = i
	}

	if len(doc.Weights) > 0 {
		if len(doc.Reactions) > 0 {
			return nil, fmt.Errorf("network %s: both reactions and weights given", doc.Name)
		}
		var err error
		if m, err = fromWeights(doc, m.Species); err != nil {
			return nil, err
		}
	} else if len(doc.Rules) > 0 {
		return nil, fmt.Errorf("network %s: rules given without weights", doc.Name)
	}

	for j, r := range doc.Reactions {
		inputs, output, err := ParseRule(r.Rule, index)
		if err != nil {
			return nil, fmt.Errorf("reaction %d (%s): %w", j+1, r.ID, err)
		}
		id := r.ID
		if id == "" {
			id = fmt.Sprintf("r%d", j+1)
		}
		m.Reactions = append(m.Reactions, network.Reaction{
			ID:     id,
			Inputs: inputs,
			Output: output,
			Weight: r.Weight,
			N:      r.N,
			EC50:   r.EC50,
		})
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := m.Params().Validate(m); err != nil {
		return nil, err
	}
	for _, name := range append([]string{doc.Phenotype}, doc.Outputs...) {
		if name != "" && m.Index(name) < 0 {
			return nil, fmt.Errorf("network %s: unknown species %q", doc.Name, name)
		}
	}

	return &Network{
		Model:       m,
		Description: strings.TrimSpace(doc.Description),
		Phenotype:   doc.Phenotype,
		Outputs:     doc.Outputs,
	}, nil
}

func fromWeights(doc document, species []network.Species) (*network.Model, error) {
	var rules []hill.Rule
	if len(doc.Rules) > 0 {
		rules = make([]hill.Rule, len(doc.Rules))
		for i, name := range doc.Rules {
			r, ok := hill.ParseRule(name)
			if !ok {
				return nil, fmt.Errorf("network %s: rule %d: unknown combination %q", doc.Name, i+1, name)
			}
			rules[i] = r
		}
	}
	return network.FromWeightMatrix(doc.Name, species, doc.Weights, rules)
}

// ParseRule parses "A & !B => C" against a name index.
func ParseRule(rule string, index map[string]int) ([]network.Input, int, error) {
	lhs, rhs, ok := strings.Cut(rule, "=>")
	if !ok {
		return nil, 0, fmt.Errorf("rule %q: missing =>", rule)
	}
	rhs = strings.TrimSpace(rhs)
	output, ok := index[rhs]
	if !ok {
		return nil, 0, fmt.Errorf("rule %q: unknown output %q", rule, rhs)
	}

	lhs = strings.TrimSpace(lhs)
	if lhs == "" {
		return nil, output, nil
	}
	var inputs []network.Input
	for _, part := range strings.Split(lhs, "&") {
		name := strings.TrimSpace(part)
		inhibit := strings.HasPrefix(name, "!")
		if inhibit {
			name = strings.TrimSpace(name[1:])
		}
		i, ok := index[name]
		if !ok {
			return nil, 0, fmt.Errorf("rule %q: unknown input %q", rule, name)
		}
		inputs = append(inputs, network.Input{Species: i, Inhibit: inhibit})
	}
	return inputs, output, nil
}

func LoadFile(p string) (*Network, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Load resolves name as a built-in network first, then as a file path.
func Load(name string) (*Network, error) {
	if n, err := Builtin(name); err == nil {
		return n, nil
	}
	if _, err := os.Stat(name); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNetwork, name)
	}
	return LoadFile(name)
}

func Builtin(name string) (*Network, error) {
	data, err := builtinFS.ReadFile(path.Join("networks", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNetwork, name)
	}
	return Parse(data)
}

func Builtins() []string {
	entries, _ := fs.ReadDir(builtinFS, "networks")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Encode writes n back to YAML with every species field explicit.
func Encode(n *Network) ([]byte, error) {
	m := n.Model
	doc := document{
		Name:        m.Name,
		Description: n.Description,
		Phenotype:   n.Phenotype,
		Outputs:     n.Outputs,
	}
	for _, s := range m.Species {
		doc.Species = append(doc.Species, speciesDoc{
			Name: s.Name, Tau: ptr(s.Tau), Ymax: ptr(s.Ymax), Y0: ptr(s.Y0), N: ptr(s.N), EC50: ptr(s.EC50),
		})
	}
	for j, r := range m.Reactions {
		doc.Reactions = append(doc.Reactions, reactionDoc{
			ID: r.ID, Rule: m.Rule(j), Weight: r.Weight, N: r.N, EC50: r.EC50,
		})
	}
	return yaml.Marshal(doc)
}

func ptr(v float64) *float64 { return &v }
