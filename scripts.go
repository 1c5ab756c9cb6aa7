package statengine

import "fmt"

// scriptNames maps analysis spec ids to bundled script names. Several
// spec ids share one script and are distinguished by derived bindings
// (see SpecBindings).
var scriptNames = map[string]string{
	"descriptives":        "descriptives",
	"ttest":               "ttest",
	"ttest-one-sample":    "ttest",
	"ttest-independent":   "ttest",
	"ttest-paired":        "ttest",
	"anova":               "anova",
	"anova-oneway":        "anova",
	"correlation":         "correlation",
	"efa":                 "efa",
	"regression":          "regression",
	"regression-linear":   "regression",
	"mediation":           "mediation",
	"moderation":          "moderation",
	"cfa":                 "cfa",
	"path-analysis":       "path_analysis",
	"moderated-mediation": "moderated_mediation",
	"moderated_mediation": "moderated_mediation",
	"serial-mediation":    "serial_mediation",
	"serial_mediation":    "serial_mediation",
	"multigroup-cfa":      "multigroup_cfa",
	"multigroup_cfa":      "multigroup_cfa",
	"full-sem":            "full_sem",
	"full_sem":            "full_sem",
	"multilevel":          "multilevel",
	"multilevel-hlm":      "multilevel",
}

// specBindings maps variant spec ids to the extra bindings their shared
// script expects.
var specBindings = map[string]map[string]Value{
	"ttest-one-sample":  {"test_type": Text("one-sample")},
	"ttest-independent": {"test_type": Text("independent")},
	"ttest-paired":      {"test_type": Text("paired")},
	"anova-oneway":      {"anova_type": Text("oneway")},
	"regression-linear": {"regression_type": Text("linear")},
	"multilevel-hlm":    {"multilevel_type": Text("hlm")},
}

// ResolveScriptName maps an analysis spec id to its bundled script name
// (without extension). Unknown spec ids are an error.
func ResolveScriptName(specID string) (string, error) {
	name, ok := scriptNames[specID]
	if !ok {
		return "", fmt.Errorf("statengine: unknown analysis spec id %q", specID)
	}
	return name, nil
}

// SpecBindings returns the derived bindings a variant spec id implies,
// or nil when the spec id carries none.
func SpecBindings(specID string) map[string]Value {
	return specBindings[specID]
}

// PythonPackageProbe builds a probe script for the bundled Python
// wrapper: it assigns true to result when the named package resolves.
// Engines use it as their default [Prober] script builder.
func PythonPackageProbe(pkg string) string {
	return fmt.Sprintf("import importlib.util\nresult = importlib.util.find_spec(%q) is not None", pkg)
}
