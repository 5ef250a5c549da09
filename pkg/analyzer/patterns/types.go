package patterns

import (
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/flags"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/metrics"
)

// Code is the short tag of a structural pattern.
type Code string

// String implements fmt.Stringer for toon serialization.
func (c Code) String() string {
	return string(c)
}

// Application patterns.
const (
	WideReach        Code = "WR"
	RoleSkew         Code = "RS"
	ContextSpread    Code = "CS"
	SharedDependency Code = "SD"
)

// Topic patterns.
const (
	CommunicationBackbone    Code = "CB"
	DirectionalConcentration Code = "DC"
	PeripheralAggregator     Code = "PA"
)

// Node patterns.
const (
	InteractionHotspot Code = "IH"
)

// Library patterns.
const (
	WidelyUsedLibrary   Code = "WUL"
	ConcentratedLibrary Code = "CL"
)

// Flags resolves the relative flags of one entity by metric code.
// Unknown codes resolve to the zero Flag.
type Flags map[metrics.Code]flags.Flag

func (f Flags) up(c metrics.Code) bool   { return f[c].Up }
func (f Flags) down(c metrics.Code) bool { return f[c].Down }

// Predicate decides whether an entity's flags trigger a pattern.
type Predicate func(Flags) bool

// Rule is one row of a pattern table.
type Rule struct {
	Code        Code      `json:"code" toon:"code"`
	Name        string    `json:"name" toon:"name"`
	Condition   string    `json:"condition" toon:"condition"`
	Description string    `json:"description" toon:"description"`
	Predicate   Predicate `json:"-" toon:"-"`
}
