package metrics

import "github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"

// Code is the short column name of a raw structural metric.
type Code string

// String implements fmt.Stringer for toon serialization.
func (c Code) String() string {
	return string(c)
}

// Application metrics.
const (
	Reach           Code = "R"
	Amplification   Code = "A"
	RoleAsymmetry   Code = "RA"
	TopicContext    Code = "TC"
	LibraryExposure Code = "LE"
)

// Topic metrics.
const (
	Coverage        Code = "C"
	Imbalance       Code = "I"
	PhysicalSpread  Code = "PS"
	LowConnectivity Code = "LCR"
)

// Node metrics.
const (
	NodeDensity            Code = "ND"
	NodeInteractionDensity Code = "NID"
)

// Library metrics.
const (
	LibraryCoverage      Code = "LC"
	LibraryConcentration Code = "LCon"
)

// Definition describes one metric for reports.
type Definition struct {
	Code        Code   `json:"code" toon:"code"`
	Name        string `json:"name" toon:"name"`
	Description string `json:"description" toon:"description"`
}

var definitions = map[models.Kind][]Definition{
	models.KindApplication: {
		{Reach, "Reach", "distinct applications reachable through one topic hop, excluding itself"},
		{Amplification, "Amplification", "reach per published topic, R / (|Y|+1)"},
		{RoleAsymmetry, "Role Asymmetry", "(|Y|-|A|) / (|Y|+|A|+1); positive leans publisher"},
		{TopicContext, "Topic-Context Diversity", "distinct topic categories touched"},
		{LibraryExposure, "Library Exposure", "libraries used"},
	},
	models.KindTopic: {
		{Coverage, "Coverage", "publishers plus subscribers"},
		{Imbalance, "Imbalance", "||Y|-|A|| / (C+1)"},
		{PhysicalSpread, "Physical Spread", "distinct nodes hosting participants"},
		{LowConnectivity, "Low-Connectivity Ratio", "share of participants with at most K topics"},
	},
	models.KindNode: {
		{NodeDensity, "Node Density", "hosted applications"},
		{NodeInteractionDensity, "Node Interaction Density", "co-located application pairs that communicate"},
	},
	models.KindLibrary: {
		{LibraryCoverage, "Library Coverage", "applications using the library"},
		{LibraryConcentration, "Library Concentration", "users on the single most concentrated node"},
	},
}

// Definitions returns the metric definitions of a kind in column order.
func Definitions(kind models.Kind) []Definition {
	return definitions[kind]
}

// Codes returns the metric codes of a kind in column order.
func Codes(kind models.Kind) []Code {
	defs := definitions[kind]
	out := make([]Code, len(defs))
	for i, d := range defs {
		out[i] = d.Code
	}
	return out
}

// Row holds the raw metric values of one entity, aligned with Table.Codes.
type Row struct {
	ID     string
	Name   string
	Values []float64
}

// Table is the raw metric matrix of one entity kind. Rows are in ascending id order.
type Table struct {
	Kind  models.Kind
	Codes []Code
	Rows  []Row
}

// Column returns every entity's value for the metric at position j.
func (t *Table) Column(j int) []float64 {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Values[j]
	}
	return out
}

// Value returns the value of code for the row with the given id.
func (t *Table) Value(id string, code Code) (float64, bool) {
	col := -1
	for j, c := range t.Codes {
		if c == code {
			col = j
			break
		}
	}
	if col < 0 {
		return 0, false
	}
	for _, r := range t.Rows {
		if r.ID == id {
			return r.Values[col], true
		}
	}
	return 0, false
}

// Settings holds the constants used by the calculators.
type Settings struct {
	// LowConnectivityDegree is K_LCR: applications touching at most this many
	// topics count as low-connectivity participants.
	LowConnectivityDegree int
}

// DefaultLowConnectivityDegree is the default K_LCR.
const DefaultLowConnectivityDegree = 2

// DefaultSettings returns the standard calculator constants.
func DefaultSettings() Settings {
	return Settings{LowConnectivityDegree: DefaultLowConnectivityDegree}
}
