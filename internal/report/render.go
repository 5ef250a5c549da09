// Package report turns analysis results into renderable tables and sections.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/output"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/inventory"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/loops"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/metrics"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/structure"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Options controls table size and cell coloring.
type Options struct {
	Top     int // 0 = all rows
	Colored bool
}

var (
	title   = cases.Title(language.English)
	printer = message.NewPrinter(language.English)
)

func count(n int) string {
	return printer.Sprintf("%d", n)
}

func score(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func limit(n, top int) int {
	if top > 0 && top < n {
		return top
	}
	return n
}

func joinOrDash[T fmt.Stringer](items []T) string {
	if len(items) == 0 {
		return "-"
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return strings.Join(parts, ",")
}

func header(meta Metadata) *output.Section {
	lines := []string{
		"Dataset:     " + meta.Dataset,
		"Run:         " + meta.RunID,
		"Generated:   " + meta.GeneratedAt,
	}
	if meta.Fingerprint != "" {
		lines = append(lines, "Fingerprint: "+meta.Fingerprint)
	}
	return &output.Section{Content: strings.Join(lines, "\n") + "\n"}
}

// Analysis renders the full structural analysis: a summary, one scored table
// per entity kind, thresholds, pattern counts, topic categories and any
// dropped edges.
func Analysis(meta Metadata, a *structure.Analysis, opts Options) *output.Report {
	r := &output.Report{
		Title: "Structural analysis: " + meta.Dataset,
		Data:  AnalysisDocument{Metadata: meta, Analysis: a},
	}
	r.Sections = append(r.Sections, header(meta), summarySection(a))

	for i := range a.Categories {
		r.Sections = append(r.Sections, entityTable(&a.Categories[i], opts))
	}
	r.Sections = append(r.Sections, thresholdTable(a), patternCountTable(a), topicCategoryTable(a, opts))
	if len(a.Dropped) > 0 {
		r.Sections = append(r.Sections, droppedTable(a))
	}
	return r
}

func summarySection(a *structure.Analysis) *output.Section {
	s := a.Summary
	return &output.Section{
		Title: "Summary",
		Content: fmt.Sprintf(
			"Applications: %s  Topics: %s  Nodes: %s  Libraries: %s\n"+
				"Edges: %s  Dropped: %s  Topic categories: %s  Pattern hits: %s\n"+
				"tau=%.2f lambda=%.2f min_lcp_len=%d k_lcr=%d\n",
			count(s.Applications), count(s.Topics), count(s.Nodes), count(s.Libraries),
			count(s.Edges), count(s.DroppedEdges), count(s.TopicCategories), count(s.PatternHits),
			a.Settings.Tau, a.Settings.Lambda, a.Settings.MinPrefixLen, a.Settings.LowConnectivityDegree,
		),
	}
}

// flagged appends an arrow for up or down flags.
func flagged(m structure.MetricValue) string {
	v := strconv.FormatFloat(m.Value, 'f', 3, 64)
	switch {
	case m.Up && m.Down:
		return v + " ↕"
	case m.Up:
		return v + " ↑"
	case m.Down:
		return v + " ↓"
	default:
		return v
	}
}

func entityTable(c *structure.Category, opts Options) *output.Table {
	codes := metrics.Codes(c.Kind)
	headers := []string{"#", "ID", "Name", "Score", "OS^P", "UNI", "Patterns"}
	for _, code := range codes {
		headers = append(headers, code.String())
	}

	ranking := c.Ranking()
	n := limit(len(ranking), opts.Top)
	rows := make([][]string, 0, n)
	for i, entry := range ranking[:n] {
		e, _ := c.Entity(entry.ID)
		scoreCell := score(e.Score)
		if opts.Colored {
			scoreCell = output.ScoreColor(e.OSP, scoreCell)
		}
		row := []string{
			strconv.Itoa(i + 1), e.ID, e.Name, scoreCell, score(e.OSP), score(e.UNI),
			joinOrDash(e.TriggeredCodes()),
		}
		for _, code := range codes {
			m, _ := e.Metric(code)
			row = append(row, flagged(m))
		}
		rows = append(rows, row)
	}

	var footer []string
	if n < len(ranking) {
		footer = make([]string, len(headers))
		footer[1] = fmt.Sprintf("%d more", len(ranking)-n)
	}
	return output.NewTable(title.String(c.Kind.Plural()), headers, rows, footer, c)
}

func thresholdTable(a *structure.Analysis) *output.Table {
	headers := []string{"Kind", "Metric", "Q1", "Q3", "Min", "Max", "Mode"}
	var rows [][]string
	for _, c := range a.Categories {
		for _, t := range c.Thresholds {
			rows = append(rows, []string{
				c.Kind.String(), t.Code.String(), score(t.Q1), score(t.Q3), score(t.Min), score(t.Max), string(t.Mode),
			})
		}
	}
	return output.NewTable("Thresholds", headers, rows, nil, nil)
}

func patternCountTable(a *structure.Analysis) *output.Table {
	headers := []string{"Kind", "Pattern", "Entities"}
	var rows [][]string
	for _, c := range a.Categories {
		for _, pc := range c.PatternCounts {
			rows = append(rows, []string{c.Kind.String(), pc.Code.String(), count(pc.Count)})
		}
	}
	return output.NewTable("Pattern counts", headers, rows, []string{"", "Total", count(a.Summary.PatternHits)}, nil)
}

func topicCategoryTable(a *structure.Analysis, opts Options) *output.Table {
	headers := []string{"Topic", "Name", "Category"}
	n := limit(len(a.TopicCategories), opts.Top)
	rows := make([][]string, n)
	for i, asg := range a.TopicCategories[:n] {
		rows[i] = []string{asg.TopicID, asg.Name, asg.Category}
	}
	return output.NewTable("Topic categories", headers, rows, nil, a.TopicCategories)
}

func droppedTable(a *structure.Analysis) *output.Table {
	headers := []string{"Relation", "From", "To", "Unresolved"}
	rows := make([][]string, len(a.Dropped))
	for i, d := range a.Dropped {
		rows[i] = []string{string(d.Relation), d.From, d.To, string(d.Dangling)}
	}
	return output.NewTable("Dropped edges", headers, rows, nil, a.Dropped)
}

// Ranking renders each kind's (name, score) list, highest score first.
func Ranking(meta Metadata, a *structure.Analysis, opts Options) *output.Report {
	doc := RankingDocument{Metadata: meta}
	r := &output.Report{Title: "Rankings: " + meta.Dataset}
	r.Sections = append(r.Sections, header(meta))

	for _, c := range a.Categories {
		entries := c.Ranking()
		entries = entries[:limit(len(entries), opts.Top)]
		doc.Rankings = append(doc.Rankings, KindRanking{Category: c.Kind.Plural(), Entries: entries})

		rows := make([][]string, len(entries))
		for i, e := range entries {
			rows[i] = []string{strconv.Itoa(i + 1), e.Name, score(e.Score)}
		}
		r.Sections = append(r.Sections, output.NewTable(title.String(c.Kind.Plural()), []string{"#", "Name", "Score"}, rows, nil, entries))
	}
	r.Data = doc
	return r
}

// Inventory renders the basic statistics of a snapshot.
func Inventory(meta Metadata, s *inventory.Stats, opts Options) *output.Report {
	r := &output.Report{
		Title: "Basic statistics: " + meta.Dataset,
		Data:  InventoryDocument{Metadata: meta, Stats: s},
	}
	sum := s.Summary
	r.Sections = append(r.Sections,
		header(meta),
		&output.Section{
			Title: "Summary",
			Content: fmt.Sprintf(
				"Applications: %s  Topics: %s  Nodes: %s  Libraries: %s\n"+
					"Topics per application: mean %.2f, stddev %.2f\n"+
					"Applications per node: mean %.2f\n"+
					"Total topic size: %s bytes\n",
				count(sum.Applications), count(sum.Topics), count(sum.Nodes), count(sum.Libraries),
				sum.MeanTopicsPerApp, sum.StdDevTopicsPerApp, sum.MeanAppsPerNode, count(sum.TotalTopicBytes),
			),
		},
		countTable("Topics by size", "Bytes", s.TopicsBySize, opts),
		countTable("Topics by publishers", "Publishers", s.TopicsByPublishers, opts),
		countTable("Topics by subscribers", "Subscribers", s.TopicsBySubscribers, opts),
		countTable("Applications per node", "Applications", s.AppsPerNode, opts),
		usageTable(s.AppTopicUsage, opts),
		qosTable(s.QoS),
	)
	return r
}

func countTable(name, unit string, counts []inventory.Count, opts Options) *output.Table {
	counts = counts[:limit(len(counts), opts.Top)]
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{c.ID, c.Name, count(c.Count)}
	}
	return output.NewTable(name, []string{"ID", "Name", unit}, rows, nil, counts)
}

func usageTable(usage []inventory.Usage, opts Options) *output.Table {
	usage = usage[:limit(len(usage), opts.Top)]
	rows := make([][]string, len(usage))
	for i, u := range usage {
		rows[i] = []string{u.ID, u.Name, count(u.Publishes), count(u.Subscribes), count(u.Total)}
	}
	return output.NewTable("Application topic usage",
		[]string{"ID", "Name", "Publishes", "Subscribes", "Total"}, rows, nil, usage)
}

func qosTable(q inventory.QoS) *output.Table {
	var rows [][]string
	add := func(attr string, values []inventory.ValueCount) {
		for _, v := range values {
			rows = append(rows, []string{attr, v.Value, count(v.Count)})
		}
	}
	add("durability", q.Durability)
	add("reliability", q.Reliability)
	add("transport_priority", q.TransportPriority)
	return output.NewTable("QoS", []string{"Attribute", "Value", "Topics"}, rows, nil, q)
}

// Loops renders the feedback loop findings.
func Loops(meta Metadata, l *loops.Analysis) *output.Report {
	self := make([][]string, len(l.SelfSubscriptions))
	for i, s := range l.SelfSubscriptions {
		self[i] = []string{s.Application, s.Topic}
	}
	pairs := make([][]string, len(l.PingPongs))
	for i, p := range l.PingPongs {
		pairs[i] = []string{p.First, p.Second, p.Forward, p.Backward}
	}
	clusters := make([][]string, len(l.Clusters))
	for i, c := range l.Clusters {
		clusters[i] = []string{strconv.Itoa(len(c.Applications)), strings.Join(c.Applications, ", ")}
	}

	return &output.Report{
		Title: "Feedback loops: " + meta.Dataset,
		Data:  LoopsDocument{Metadata: meta, Loops: l},
		Sections: []output.Renderable{
			header(meta),
			output.NewTable("Self-subscriptions", []string{"Application", "Topic"}, self, nil, l.SelfSubscriptions),
			output.NewTable("Ping-pong pairs", []string{"First", "Second", "Forward", "Backward"}, pairs, nil, l.PingPongs),
			output.NewTable("Feedback clusters", []string{"Size", "Applications"}, clusters, nil, l.Clusters),
		},
	}
}

// Patterns renders the metric and pattern legend.
func Patterns(kind models.Kind) *output.Report {
	legend := NewLegend()
	if kind != "" {
		legend = legend.filter(kind)
	}

	metricRows := make([][]string, len(legend.Metrics))
	for i, m := range legend.Metrics {
		metricRows[i] = []string{m.Kind.String(), m.Code.String(), m.Name, m.Description}
	}
	patternRows := make([][]string, len(legend.Patterns))
	for i, p := range legend.Patterns {
		patternRows[i] = []string{p.Kind.String(), p.Code.String(), p.Name, p.Condition, p.Description}
	}

	return &output.Report{
		Title: "Metrics and patterns",
		Data:  legend,
		Sections: []output.Renderable{
			output.NewTable("Metrics", []string{"Kind", "Code", "Name", "Description"}, metricRows, nil, nil),
			output.NewTable("Patterns", []string{"Kind", "Code", "Name", "Condition", "Description"}, patternRows, nil, nil),
		},
	}
}

func (l Legend) filter(kind models.Kind) Legend {
	var out Legend
	for _, m := range l.Metrics {
		if m.Kind == kind {
			out.Metrics = append(out.Metrics, m)
		}
	}
	for _, p := range l.Patterns {
		if p.Kind == kind {
			out.Patterns = append(out.Patterns, p)
		}
	}
	return out
}

// Batch combines per-dataset reports. A single report is returned unchanged.
func Batch(reports []output.Renderable) output.Renderable {
	if len(reports) == 1 {
		return reports[0]
	}
	data := make([]any, len(reports))
	for i, r := range reports {
		data[i] = r.RenderData()
	}
	return &output.Report{Sections: reports, Data: data}
}
