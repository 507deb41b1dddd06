package metrics

import "fmt"

// Operator tells how per-fold values of a metric are combined
type Operator int

const (
	// Mean averages fold values
	Mean Operator = iota
	// Sum adds fold values (counts)
	Sum
	// Structural adds Python-literal structures element-wise (confusion matrix, class priors)
	Structural
)

func (o Operator) String() string {
	switch o {
	case Sum:
		return "sum"
	case Structural:
		return "structural"
	default:
		return "mean"
	}
}

// Metric is one evaluation measure reported per fold
type Metric struct {
	// Name is the readable (snake_case) name used by the Python wrapper
	Name string
	// RawName is the name written by the Java toolkit
	RawName  string
	Operator Operator
}

// Registry is an immutable, ordered table of metrics
type Registry struct {
	metrics []Metric
	byName  map[string]int
}

// NewRegistry builds a registry; names must be unique
func NewRegistry(metrics []Metric) (*Registry, error) {
	r := &Registry{
		metrics: append([]Metric(nil), metrics...),
		byName:  make(map[string]int, len(metrics)),
	}
	for i, m := range r.metrics {
		if _, dup := r.byName[m.Name]; dup {
			return nil, fmt.Errorf("duplicate metric %q", m.Name)
		}
		r.byName[m.Name] = i
	}
	return r, nil
}

// Metrics returns the metrics in registry order
func (r *Registry) Metrics() []Metric {
	return append([]Metric(nil), r.metrics...)
}

// Lookup finds a metric by readable name
func (r *Registry) Lookup(name string) (Metric, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Metric{}, false
	}
	return r.metrics[i], true
}

// Len returns the number of metrics
func (r *Registry) Len() int {
	return len(r.metrics)
}

// Column returns the header name of a metric under a convention
func (m Metric) Column(convention HeaderConvention) string {
	if convention == RawHeader {
		return m.RawName
	}
	return m.Name
}

var defaultRegistry = mustRegistry([]Metric{
	{"avg_cost", "avgCost", Mean},
	{"class_priors", "getClassPriors", Structural},
	{"confusion_matrix", "confusionMatrix", Structural},
	{"correct", "correct", Sum},
	{"error_rate", "errorRate", Mean},
	{"incorrect", "incorrect", Sum},
	{"kappa", "kappa", Mean},
	{"kb_information", "KBInformation", Mean},
	{"kb_mean_information", "KBMeanInformation", Mean},
	{"kb_relative_information", "KBRelativeInformation", Mean},
	{"mean_absolute_error", "meanAbsoluteError", Mean},
	{"mean_prior_absolute_error", "meanPriorAbsoluteError", Mean},
	{"num_instances", "numInstances", Sum},
	{"percent_correct", "pctCorrect", Mean},
	{"percent_incorrect", "pctIncorrect", Mean},
	{"percent_unclassified", "pctUnclassified", Mean},
	{"relative_absolute_error", "relativeAbsoluteError", Mean},
	{"root_mean_prior_squared_error", "rootMeanPriorSquaredError", Mean},
	{"root_mean_squared_error", "rootMeanSquaredError", Mean},
	{"root_relative_squared_error", "rootRelativeSquaredError", Mean},
	{"sf_entropy_gain", "SFEntropyGain", Mean},
	{"sf_mean_entropy_gain", "SFMeanEntropyGain", Mean},
	{"sf_mean_prior_entropy", "SFMeanPriorEntropy", Mean},
	{"sf_mean_scheme_entropy", "SFMeanSchemeEntropy", Mean},
	{"sf_prior_entropy", "SFPriorEntropy", Mean},
	{"size_of_predicted_regions", "sizeOfPredictedRegions", Mean},
	{"total_cost", "totalCost", Sum},
	{"unclassified", "unclassified", Sum},
	{"unweighted_area_under_roc", "unweightedAreaUnderRoc", Mean},
	{"unweighted_macro_f_measure", "unweightedMacroFmeasure", Mean},
	{"unweighted_micro_f_measure", "unweightedMicroFmeasure", Mean},
	{"weighted_area_under_prc", "weightedAreaUnderPRC", Mean},
	{"weighted_area_under_roc", "weightedAreaUnderROC", Mean},
	{"weighted_f_measure", "weightedFMeasure", Mean},
	{"weighted_false_negative_rate", "weightedFalseNegativeRate", Mean},
	{"weighted_false_positive_rate", "weightedFalsePositiveRate", Mean},
	{"weighted_matthews_correlation", "weightedMatthewsCorrelation", Mean},
	{"weighted_precision", "weightedPrecision", Mean},
	{"weighted_recall", "weightedRecall", Mean},
	{"weighted_true_negative_rate", "weightedTrueNegativeRate", Mean},
	{"weighted_true_positive_rate", "weightedTruePositiveRate", Mean},
})

func mustRegistry(metrics []Metric) *Registry {
	r, err := NewRegistry(metrics)
	if err != nil {
		panic(err)
	}
	return r
}

// Default returns the evaluation metrics reported by EDNEL runs
func Default() *Registry {
	return defaultRegistry
}
