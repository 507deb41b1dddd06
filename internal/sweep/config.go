// Package sweep samples EDNEL hyperparameters and writes one shell script of
// experiment commands per dataset set.
package sweep

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LinspacePoints is how many evenly spaced candidates a float range offers
const LinspacePoints = 50

// Range is a sampling rule: an integer range [Min, Max), a float range sampled
// on LinspacePoints points of [Min, Max], or a fixed value
type Range struct {
	Min, Max float64
	Float    bool
	Fixed    string // set for fixed values
}

// IsFixed reports whether the parameter takes one value
func (r Range) IsFixed() bool { return r.Fixed != "" }

// Parameter is a named sampling rule
type Parameter struct {
	Name  string
	Range Range
}

// Parameters keeps the order in which the config lists them
type Parameters []Parameter

// DatasetSet is one group of datasets that gets its own script
type DatasetSet struct {
	Name          string   `yaml:"name"`
	ExperimentSet string   `yaml:"experiment_set"`
	Datasets      []string `yaml:"datasets"`
}

// Config describes a sweep
type Config struct {
	Template   string       `yaml:"template"`
	NSamples   int          `yaml:"n_samples"`
	Seed       int64        `yaml:"seed"`
	Parameters Parameters   `yaml:"parameters"`
	Sets       []DatasetSet `yaml:"sets"`
}

// UnmarshalYAML reads a mapping of name to [min, max] or scalar. The tag of the
// first bound decides between integer and float ranges.
func (p *Parameters) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: parameters must be a mapping", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		r, err := parseRange(val)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", key.Value, err)
		}
		*p = append(*p, Parameter{Name: key.Value, Range: r})
	}
	return nil
}

func parseRange(n *yaml.Node) (Range, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Value == "" {
			return Range{}, fmt.Errorf("line %d: empty value", n.Line)
		}
		return Range{Fixed: n.Value}, nil
	case yaml.SequenceNode:
		if len(n.Content) != 2 {
			return Range{}, fmt.Errorf("line %d: range needs exactly two bounds", n.Line)
		}
		lo, err := strconv.ParseFloat(n.Content[0].Value, 64)
		if err != nil {
			return Range{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		hi, err := strconv.ParseFloat(n.Content[1].Value, 64)
		if err != nil {
			return Range{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		r := Range{Min: lo, Max: hi, Float: n.Content[0].ShortTag() == "!!float"}
		if !r.Float && int64(hi) <= int64(lo) {
			return Range{}, fmt.Errorf("line %d: empty integer range [%v, %v)", n.Line, int64(lo), int64(hi))
		}
		return r, nil
	default:
		return Range{}, fmt.Errorf("line %d: expected [min, max] or a scalar", n.Line)
	}
}

// MarshalYAML writes the parameters back as an ordered mapping
func (p Parameters) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, param := range p {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: param.Name}
		var val *yaml.Node
		switch {
		case param.Range.IsFixed():
			val = &yaml.Node{Kind: yaml.ScalarNode, Value: param.Range.Fixed}
		case param.Range.Float:
			val = &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle, Content: []*yaml.Node{
				floatNode(param.Range.Min), floatNode(param.Range.Max),
			}}
		default:
			val = &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle, Content: []*yaml.Node{
				intNode(param.Range.Min), intNode(param.Range.Max),
			}}
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

func floatNode(f float64) *yaml.Node {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if f == float64(int64(f)) {
		s += ".0"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}
}

func intNode(f float64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(f), 10)}
}

// LoadConfig reads a YAML sweep config
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sweep config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse sweep config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields a sweep needs
func (c *Config) Validate() error {
	if c.Template == "" {
		return fmt.Errorf("sweep config: template is required")
	}
	if c.NSamples <= 0 {
		return fmt.Errorf("sweep config: n_samples must be positive")
	}
	if len(c.Sets) == 0 {
		return fmt.Errorf("sweep config: at least one dataset set is required")
	}
	for _, s := range c.Sets {
		if s.Name == "" {
			return fmt.Errorf("sweep config: every set needs a name")
		}
	}
	for _, p := range c.Parameters {
		r := p.Range
		if !r.IsFixed() && !r.Float && int64(r.Max) <= int64(r.Min) {
			return fmt.Errorf("sweep config: parameter %s has an empty integer range [%d, %d)", p.Name, int64(r.Min), int64(r.Max))
		}
	}
	return nil
}

// Marshal renders the config as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// DefaultConfig is the random search used for the EDNEL hyperparameter study
func DefaultConfig() *Config {
	return &Config{
		Template: "java -Xmx6G -jar ednel.jar --datasets_path keel_datasets_10fcv " +
			"--metadata_path /A/henry/ednel/metadata/<experiment_set> --n_samples 1 --thinning_factor 0 " +
			"--timeout 10000 --timeout_individual 60 --log " +
			"--n_jobs 5 --n_generations <n_generations> --n_individuals <n_individuals> --selection_share " +
			"<selection_share> --burn_in <burn_in> --max_parents <max_parents> --early_stop_generations " +
			"<early_stop_generations> --delay_structure_learning <delay_structure_learning> --learning_rate " +
			"<learning_rate> --datasets_names <datasets_names>",
		NSamples: 25,
		Parameters: Parameters{
			{Name: "n_individuals", Range: Range{Min: 25, Max: 201}},
			{Name: "n_generations", Range: Range{Min: 25, Max: 201}},
			{Name: "selection_share", Range: Range{Min: 0.1, Max: 0.9, Float: true}},
			{Name: "learning_rate", Range: Range{Min: 0.1, Max: 1, Float: true}},
			{Name: "burn_in", Range: Range{Min: 0, Max: 101}},
			{Name: "max_parents", Range: Range{Min: 1, Max: 6}},
			{Name: "delay_structure_learning", Range: Range{Min: 0, Max: 26}},
			{Name: "early_stop_generations", Range: Range{Min: 5, Max: 26}},
		},
		Sets: []DatasetSet{
			{
				Name:          "a_sets_experiments",
				ExperimentSet: "a_experiments",
				Datasets: []string{"hayes-roth", "tae", "haberman", "newthyroid", "bupa", "wine", "balancescale",
					"bloodtransfusion", "heart", "cleveland", "mammographic", "banknotes", "pima", "tictactoe",
					"australian", "spectfheart", "car", "vowel", "contraceptive", "diabetic", "soybean",
					"syntheticcontrol", "segment", "artificialcharacters", "chess", "thyroid", "turkiye", "waveform",
					"magic"},
			},
			{
				Name:          "b_sets_experiments",
				ExperimentSet: "b_experiments",
				Datasets: []string{"iris", "breast", "monk-2", "led7digit", "saheart", "wisconsin", "titanic", "crx",
					"creditapproval", "ionosphere", "sonar", "flare", "dermatology", "banana", "vehicle", "wdbc",
					"german", "phoneme", "seismicbumps", "drugconsumption", "page-blocks", "steelfaults", "krvskp",
					"ring", "twonorm", "penbased", "splice", "texture", "spambase"},
			},
		},
	}
}
