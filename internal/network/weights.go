package network

import (
	"fmt"
	"math"

	"github.com/san-kum/netsens/internal/hill"
)

// FromWeightMatrix builds a model from a signed regulator->target matrix.
// w[j][i] > 0 means j activates i, w[j][i] < 0 means j inhibits i. rules[i]
// selects how target i combines its regulators: RuleOr yields one reaction per
// edge, RuleAnd yields a single reaction over all regulators weighted by the
// largest |w| among them.
func FromWeightMatrix(name string, species []Species, w [][]float64, rules []hill.Rule) (*Model, error) {
	n := len(species)
	if len(w) != n {
		return nil, &ConfigError{Field: "weights", Index: -1, Reason: fmt.Sprintf("%d rows, want %d", len(w), n)}
	}
	for j, row := range w {
		if len(row) != n {
			return nil, &ConfigError{Field: "weights", Index: j, Reason: fmt.Sprintf("%d columns, want %d", len(row), n)}
		}
	}
	if rules != nil && len(rules) != n {
		return nil, &ConfigError{Field: "rules", Index: -1, Reason: fmt.Sprintf("%d rules, want %d", len(rules), n)}
	}

	m := &Model{Name: name, Species: append([]Species(nil), species...)}
	for i := 0; i < n; i++ {
		rule := hill.RuleOr
		if rules != nil {
			rule = rules[i]
		}

		var inputs []Input
		weight := 0.0
		for j := 0; j < n; j++ {
			wji := w[j][i]
			if wji == 0 {
				continue
			}
			in := Input{Species: j, Inhibit: wji < 0}
			if rule == hill.RuleOr {
				m.Reactions = append(m.Reactions, Reaction{
					ID:     fmt.Sprintf("r%d", len(m.Reactions)+1),
					Inputs: []Input{in},
					Output: i,
					Weight: math.Abs(wji),
				})
				continue
			}
			inputs = append(inputs, in)
			weight = math.Max(weight, math.Abs(wji))
		}
		if len(inputs) > 0 {
			m.Reactions = append(m.Reactions, Reaction{
				ID:     fmt.Sprintf("r%d", len(m.Reactions)+1),
				Inputs: inputs,
				Output: i,
				Weight: weight,
			})
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
