// Package patterns combines relative metric flags into named structural smells.
//
// Each entity kind has a fixed rule table; evaluation is stateless given the
// flags of one entity.
package patterns

import (
	m "github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/metrics"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
)

var rules = map[models.Kind][]Rule{
	models.KindApplication: {
		{
			Code:        WideReach,
			Name:        "Wide Reach",
			Condition:   "R_up ∧ A_up",
			Description: "reaches many peers and amplifies each published topic",
			Predicate:   func(f Flags) bool { return f.up(m.Reach) && f.up(m.Amplification) },
		},
		{
			Code:        RoleSkew,
			Name:        "Role Skew",
			Condition:   "RA_up ∨ RA_down",
			Description: "almost exclusively publishes or almost exclusively subscribes",
			Predicate:   func(f Flags) bool { return f.up(m.RoleAsymmetry) || f.down(m.RoleAsymmetry) },
		},
		{
			Code:        ContextSpread,
			Name:        "Context Spread",
			Condition:   "TC_up",
			Description: "touches many unrelated topic categories",
			Predicate:   func(f Flags) bool { return f.up(m.TopicContext) },
		},
		{
			Code:        SharedDependency,
			Name:        "Shared Dependency",
			Condition:   "LE_up",
			Description: "depends on an unusually large number of libraries",
			Predicate:   func(f Flags) bool { return f.up(m.LibraryExposure) },
		},
	},
	models.KindTopic: {
		{
			Code:        CommunicationBackbone,
			Name:        "Communication Backbone",
			Condition:   "C_up ∧ I_down",
			Description: "heavily used by a balanced mix of publishers and subscribers",
			Predicate:   func(f Flags) bool { return f.up(m.Coverage) && f.down(m.Imbalance) },
		},
		{
			Code:        DirectionalConcentration,
			Name:        "Directional Concentration",
			Condition:   "I_up",
			Description: "dominated by one side, fan-in or fan-out",
			Predicate:   func(f Flags) bool { return f.up(m.Imbalance) },
		},
		{
			Code:        PeripheralAggregator,
			Name:        "Peripheral Aggregator",
			Condition:   "LCR_up",
			Description: "mostly used by weakly connected applications",
			Predicate:   func(f Flags) bool { return f.up(m.LowConnectivity) },
		},
	},
	models.KindNode: {
		{
			Code:        InteractionHotspot,
			Name:        "Interaction Hotspot",
			Condition:   "ND_up ∧ NID_up",
			Description: "hosts many applications that also talk to each other",
			Predicate:   func(f Flags) bool { return f.up(m.NodeDensity) && f.up(m.NodeInteractionDensity) },
		},
	},
	models.KindLibrary: {
		{
			Code:        WidelyUsedLibrary,
			Name:        "Widely Used Library",
			Condition:   "LC_up",
			Description: "used by an unusually large share of applications",
			Predicate:   func(f Flags) bool { return f.up(m.LibraryCoverage) },
		},
		{
			Code:        ConcentratedLibrary,
			Name:        "Concentrated Library",
			Condition:   "LCon_up",
			Description: "its users cluster on a single node",
			Predicate:   func(f Flags) bool { return f.up(m.LibraryConcentration) },
		},
	},
}

// Rules returns the rule table of a kind in report order.
func Rules(kind models.Kind) []Rule {
	return rules[kind]
}

// Codes returns the pattern codes of a kind in report order.
func Codes(kind models.Kind) []Code {
	rs := rules[kind]
	out := make([]Code, len(rs))
	for i, r := range rs {
		out[i] = r.Code
	}
	return out
}

// Evaluate returns one boolean per rule of kind, aligned with Codes(kind).
func Evaluate(kind models.Kind, f Flags) []bool {
	rs := rules[kind]
	out := make([]bool, len(rs))
	for i, r := range rs {
		out[i] = r.Predicate(f)
	}
	return out
}

// Lookup finds a rule by code across all kinds.
func Lookup(code Code) (models.Kind, Rule, bool) {
	for _, kind := range models.Kinds {
		for _, r := range rules[kind] {
			if r.Code == code {
				return kind, r, true
			}
		}
	}
	return "", Rule{}, false
}
