package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"aggstat/domain/series"
	"aggstat/domain/stat"
	"aggstat/internal/errors"
)

// StaticVal is a column copied verbatim to every output row.
type StaticVal struct {
	Name  string
	Value string
}

// Settings describes one aggregation job. The YAML layout follows the
// conventional parameter-file keys (line_type, series_val, list_stat and so
// on); mapping keys that carry ordering, like series_val, are decoded into
// slices so declaration order survives.
type Settings struct {
	LineType      string
	SeriesVals    []series.ValueSet
	DerivedSeries []series.DerivedSpec
	FixedVals     []series.ValueSet
	IndyVar       string
	IndyVals      []string
	Statistics    []string
	StaticVals    []StaticVal
	Iterations    int
	Threads       int
	Method        string
	Alpha         float64
	RandomSeed    *int64
	EventEqual    bool
	InputPath     string
	OutputPath    string
}

// LoadSettings reads and validates a YAML settings file.
func LoadSettings(path string) (*Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading settings file %s", path)
	}
	return ParseSettings(raw)
}

// ParseSettings decodes YAML settings bytes and validates them.
func ParseSettings(raw []byte) (*Settings, error) {
	var doc struct {
		LineType      string     `yaml:"line_type"`
		SeriesVal     yaml.Node  `yaml:"series_val"`
		DerivedSeries [][]string `yaml:"derived_series"`
		FixedVars     yaml.Node  `yaml:"fixed_vars_vals_input"`
		IndyVar       string     `yaml:"indy_var"`
		IndyVals      yaml.Node  `yaml:"indy_vals"`
		ListStat      yaml.Node  `yaml:"list_stat"`
		ListStaticVal yaml.Node  `yaml:"list_static_val"`
		NumIterations int        `yaml:"num_iterations"`
		NumThreads    int        `yaml:"num_threads"`
		Method        string     `yaml:"method"`
		Alpha         float64    `yaml:"alpha"`
		RandomSeed    *int64     `yaml:"random_seed"`
		EventEqual    string     `yaml:"event_equal"`
		Input         string     `yaml:"agg_stat_input"`
		Output        string     `yaml:"agg_stat_output"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding settings")
	}

	s := &Settings{
		LineType:   strings.ToLower(doc.LineType),
		IndyVar:    doc.IndyVar,
		IndyVals:   nodeStrings(&doc.IndyVals),
		Statistics: nodeStrings(&doc.ListStat),
		Iterations: doc.NumIterations,
		Threads:    doc.NumThreads,
		Method:     strings.ToLower(doc.Method),
		Alpha:      doc.Alpha,
		RandomSeed: doc.RandomSeed,
		EventEqual: parseBool(doc.EventEqual),
		InputPath:  doc.Input,
		OutputPath: doc.Output,
	}
	s.SeriesVals = nodeValueSets(&doc.SeriesVal)
	s.FixedVals = nodeValueSets(&doc.FixedVars)
	s.StaticVals = s.StaticValsFrom(&doc.ListStaticVal)
	for _, d := range doc.DerivedSeries {
		if len(d) != 3 {
			return nil, errors.ConfigInvalid("derived_series entries need two components and an operation")
		}
		s.DerivedSeries = append(s.DerivedSeries, series.ParseDerivedSpec(d[0], d[1], d[2]))
	}

	if s.Iterations < 1 {
		s.Iterations = 1
	}
	if s.Threads < 1 {
		s.Threads = 1
	}
	if s.Method == "" {
		s.Method = "perc"
	}
	if s.Alpha == 0 {
		s.Alpha = 0.05
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate fails fast on options that would otherwise surface mid-run.
func (s *Settings) Validate() error {
	registry := stat.NewRegistry()
	for _, name := range s.Statistics {
		if !registry.Has(name) {
			return errors.UnknownStatistic(name)
		}
	}
	switch s.Method {
	case "perc", "basic", "bca":
	default:
		return errors.ConfigInvalid("unknown confidence interval method " + s.Method)
	}
	if s.Alpha <= 0 || s.Alpha >= 1 {
		return errors.ConfigInvalid("alpha must be in (0, 1)")
	}
	if s.IndyVar == "" {
		return errors.ConfigInvalid("indy_var is required")
	}
	if len(s.IndyVals) == 0 {
		return errors.ConfigInvalid("indy_vals must not be empty")
	}
	if len(s.Statistics) == 0 {
		return errors.ConfigInvalid("list_stat must not be empty")
	}
	for _, d := range s.DerivedSeries {
		if !d.KnownOperation() {
			return errors.ConfigInvalid("unknown derived operation " + d.Operation)
		}
	}
	return nil
}

// StaticValsFrom decodes the list_static_val mapping preserving order.
func (s *Settings) StaticValsFrom(node *yaml.Node) []StaticVal {
	var out []StaticVal
	if node.Kind != yaml.MappingNode {
		return out
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		out = append(out, StaticVal{
			Name:  node.Content[i].Value,
			Value: node.Content[i+1].Value,
		})
	}
	return out
}

// nodeValueSets decodes a mapping of variable name to value list, preserving
// declaration order. Nested mappings (as fixed_vars_vals_input uses) flatten
// to the union of their inner lists.
func nodeValueSets(node *yaml.Node) []series.ValueSet {
	var out []series.ValueSet
	if node == nil || node.Kind != yaml.MappingNode {
		return out
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		out = append(out, series.ValueSet{Name: name, Values: flattenValues(node.Content[i+1])})
	}
	return out
}

func flattenValues(node *yaml.Node) []string {
	switch node.Kind {
	case yaml.ScalarNode:
		return []string{node.Value}
	case yaml.SequenceNode:
		return nodeStrings(node)
	case yaml.MappingNode:
		var out []string
		for i := 1; i < len(node.Content); i += 2 {
			out = append(out, flattenValues(node.Content[i])...)
		}
		return out
	}
	return nil
}

// nodeStrings reads a sequence as raw scalar text, so numeric YAML values
// keep their input rendering.
func nodeStrings(node *yaml.Node) []string {
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]string, 0, len(node.Content))
	for _, c := range node.Content {
		out = append(out, c.Value)
	}
	return out
}

// parseBool accepts the conventional boolean-like strings.
func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "1":
		return true
	}
	return false
}
