package predict

import (
	"time"

	"github.com/chemgate/chemgate/engine/schema"
)

func asyncField(def bool) schema.Field {
	return schema.Field{Name: "async", Kind: schema.KindBool, Default: def}
}

// Endpoints declares every prediction endpoint the gateway serves. Field
// names, defaults and error messages are part of the public API contract;
// the chemistry itself lives in the workers behind each queue.
func Endpoints() []*Endpoint {
	return []*Endpoint{
		{
			Name:  "retro",
			Path:  "/retro/",
			Queue: "tb_c_worker",
			Task:  "get_top_precursors",
			Schema: schema.New(
				schema.Field{Name: "target", Kind: schema.KindString, Required: true, Check: smilesCheck("target")},
				schema.Field{Name: "num_templates", Kind: schema.KindInt, Default: 100},
				schema.Field{Name: "max_cum_prob", Kind: schema.KindFloat, Default: 0.995},
				schema.Field{Name: "filter_threshold", Kind: schema.KindFloat, Default: 0.75},
				schema.Field{Name: "template_set", Kind: schema.KindString, Default: "reaxys"},
				schema.Field{Name: "template_prioritizer", Kind: schema.KindString, Default: "reaxys"},
				schema.Field{Name: "cluster", Kind: schema.KindBool, Default: true},
				schema.Field{Name: "cluster_method", Kind: schema.KindChoice, Default: "kmeans",
					Choices: []string{"kmeans", "hdbscan"}},
				schema.Field{Name: "cluster_feature", Kind: schema.KindChoice, Default: "original",
					Choices: []string{"original", "outcomes", "all"}},
				schema.Field{Name: "cluster_fp_type", Kind: schema.KindChoice, Default: "morgan",
					Choices: []string{"morgan"}},
				schema.Field{Name: "cluster_fp_length", Kind: schema.KindInt, Default: 512},
				schema.Field{Name: "cluster_fp_radius", Kind: schema.KindInt, Default: 1},
				asyncField(true),
			),
			SyncTimeout: 60 * time.Second,
		},
		{
			Name:  "context",
			Path:  "/context/",
			Queue: "context_worker",
			Task:  "get_context_recommendations",
			Schema: schema.New(
				schema.Field{Name: "reactants", Kind: schema.KindString, Required: true, Check: smilesCheck("reactants")},
				schema.Field{Name: "products", Kind: schema.KindString, Required: true, Check: smilesCheck("products")},
				schema.Field{Name: "num_results", Kind: schema.KindInt, Default: 10},
				schema.Field{Name: "return_scores", Kind: schema.KindBool, Default: false},
				asyncField(true),
			),
			SyncTimeout: 30 * time.Second,
		},
		{
			Name:  "forward",
			Path:  "/forward/",
			Queue: "ft_worker",
			Task:  "get_outcomes",
			Schema: schema.New(
				schema.Field{Name: "reactants", Kind: schema.KindString, Required: true, Check: smilesCheck("reactants")},
				schema.Field{Name: "reagents", Kind: schema.KindString, Default: "", Check: optionalSmilesCheck("reagents")},
				schema.Field{Name: "solvent", Kind: schema.KindString, Default: "", Check: optionalSmilesCheck("solvent")},
				schema.Field{Name: "num_results", Kind: schema.KindInt, Default: 100},
				asyncField(true),
			),
			SyncTimeout: 30 * time.Second,
		},
		{
			Name:  "fast-filter",
			Path:  "/fast-filter/",
			Queue: "ft_worker",
			Task:  "fast_filter_check",
			Schema: schema.New(
				schema.Field{Name: "reactants", Kind: schema.KindString, Required: true, Check: smilesCheck("reactants")},
				schema.Field{Name: "products", Kind: schema.KindString, Required: true, Check: smilesCheck("products")},
			),
			SyncTimeout: 10 * time.Second,
		},
		{
			Name:  "impurity",
			Path:  "/impurity/",
			Queue: "impurity_worker",
			Task:  "predict_impurities",
			Schema: schema.New(
				schema.Field{Name: "reactants", Kind: schema.KindString, Required: true, Check: smilesCheck("")},
				schema.Field{Name: "reagents", Kind: schema.KindString, Default: "", Check: optionalSmilesCheck("")},
				schema.Field{Name: "products", Kind: schema.KindString, Default: "", Check: optionalSmilesCheck("")},
				schema.Field{Name: "solvent", Kind: schema.KindString, Default: "", Check: optionalSmilesCheck("")},
				schema.Field{Name: "top_k", Kind: schema.KindInt, Default: 3},
				schema.Field{Name: "threshold", Kind: schema.KindFloat, Default: 0.75},
				schema.Field{Name: "predictor", Kind: schema.KindString, Default: "WLN forward predictor"},
				schema.Field{Name: "inspector", Kind: schema.KindString, Default: "Reaxys predictor"},
				schema.Field{Name: "mapper", Kind: schema.KindString, Default: "WLN atom mapper"},
				schema.Field{Name: "check_mapping", Kind: schema.KindBool, Default: true},
			),
			AlwaysAsync: true,
		},
		{
			Name:  "scscore",
			Path:  "/scscore/",
			Queue: "scscore_worker",
			Task:  "get_scscore",
			Schema: schema.New(
				schema.Field{Name: "smiles", Kind: schema.KindString, Required: true, Check: smilesCheck("")},
			),
			SyncTimeout: 10 * time.Second,
			OutputKey:   "score",
		},
		{
			Name:  "selectivity",
			Path:  "/selectivity/",
			Queue: "sites_worker",
			Task:  "get_sites",
			Schema: schema.New(
				schema.Field{Name: "smiles", Kind: schema.KindString, Required: true, Check: smilesCheck("")},
				asyncField(true),
			),
			SyncTimeout: 120 * time.Second,
		},
		{
			Name:  "treebuilder",
			Path:  "/treebuilder/",
			Queue: "tb_coordinator",
			Task:  "build_tree",
			Schema: schema.New(
				schema.Field{Name: "smiles", Kind: schema.KindString, Required: true, Check: smilesCheck("")},
				schema.Field{Name: "return_first", Kind: schema.KindBool, Default: false},
				schema.Field{Name: "chemical_property_logic", Kind: schema.KindChoice, Default: "none",
					Choices: []string{"none", "and", "or"}},
				schema.Field{Name: "chemical_popularity_logic", Kind: schema.KindChoice, Default: "none",
					Choices: []string{"none", "and", "or"}},
				schema.Field{Name: "template_set", Kind: schema.KindString, Default: "reaxys"},
				schema.Field{Name: "template_prioritizer", Kind: schema.KindString, Default: "reaxys"},
				schema.Field{Name: "max_depth", Kind: schema.KindInt, Default: 4},
				schema.Field{Name: "max_branching", Kind: schema.KindInt, Default: 25},
				schema.Field{Name: "expansion_time", Kind: schema.KindInt, Default: 60},
				asyncField(true),
			),
			SyncTimeout: 120 * time.Second,
		},
		{
			Name:  "cluster",
			Path:  "/cluster/",
			Queue: "context_worker",
			Task:  "cluster_outcomes",
			Schema: schema.New(
				schema.Field{Name: "original", Kind: schema.KindString, Required: true, Check: smilesCheck("original")},
				schema.Field{Name: "outcomes", Kind: schema.KindStringList, Required: true, Check: smilesCheck("outcomes")},
				schema.Field{Name: "feature", Kind: schema.KindChoice, Default: "original",
					Choices: []string{"original", "outcomes", "all"}},
				schema.Field{Name: "fp_type", Kind: schema.KindChoice, Default: "morgan",
					Choices: []string{"morgan"}},
				schema.Field{Name: "fp_length", Kind: schema.KindInt, Default: 512},
				schema.Field{Name: "fp_radius", Kind: schema.KindInt, Default: 1},
			),
			SyncTimeout: 30 * time.Second,
		},
	}
}

// Queues returns the distinct worker queues referenced by the declared
// endpoints, in declaration order.
func Queues(endpoints []*Endpoint) []string {
	seen := make(map[string]struct{})
	queues := make([]string, 0, len(endpoints))
	for _, ep := range endpoints {
		if _, dup := seen[ep.Queue]; dup {
			continue
		}
		seen[ep.Queue] = struct{}{}
		queues = append(queues, ep.Queue)
	}
	return queues
}
