package diagnose

import "strings"

// #region category

// Category is a root-cause label from the fixed taxonomy. A label may carry a
// detail suffix ("Call_fails_oldv: write") that keeps otherwise equal labels
// apart until aggregation strips it.
type Category string

const (
	CallFailsOldv                   Category = "Call_fails_oldv"
	CallFailsNewv                   Category = "Call_fails_newv"
	DiffInternalName                Category = "Diff_internal_name"
	DiffReturnValue                 Category = "Diff_return_value"
	APIFuncNoLongerExists           Category = "API_func_no_longer_exists"
	FunctionArgImplDiff             Category = "Function_arg_impl_diff"
	DiffAPIArgumentValue            Category = "Diff_API_argument_value"
	DiffCallbackArgumentValue       Category = "Diff_callback_argument_value"
	CallbackCalledNewvNotcalledOldv Category = "Callback_called_newv_notcalled_oldv"
	InternalAsyncErrorNewv          Category = "Internal_async_error_newv"
	CallbackNotcalledNewvCalledOldv Category = "Callback_notcalled_newv_called_oldv"
	InternalAsyncErrorOldv          Category = "Internal_async_error_oldv"
	LocalFileRenamedOrRemoved       Category = "Local_file_renamed_or_removed"
	NonlocalDependencyRemoved       Category = "Nonlocal_dependency_removed"
	GrubNodeVersionMismatch         Category = "Grub_node_version_mismatch"
	EnvRefNotIncluded               Category = "Env_ref_not_included"
	SyntaxErr                       Category = "Syntax_err"
	CatchallUndiagnosed             Category = "CATCHALL_UNDIAGNOSED"

	// NotMeaningful marks a hunk that is a timing or whitespace artifact.
	// It never survives aggregation.
	NotMeaningful Category = ""
)

// noiseCategories mean the candidate's test process could not run properly,
// which makes baseline-only differences uninformative.
var noiseCategories = map[Category]bool{
	LocalFileRenamedOrRemoved: true,
	NonlocalDependencyRemoved: true,
	GrubNodeVersionMismatch:   true,
	EnvRefNotIncluded:         true,
	SyntaxErr:                 true,
}

// #endregion category

// #region helpers

// WithDetail appends a discriminating detail to the label.
func (c Category) WithDetail(detail string) Category {
	return c + Category(": "+detail)
}

// Label returns the category truncated at its first colon.
func (c Category) Label() Category {
	if i := strings.IndexByte(string(c), ':'); i >= 0 {
		return c[:i]
	}
	return c
}

// IsNoise reports whether c is one of the test-process failure categories.
func (c Category) IsNoise() bool {
	return noiseCategories[c.Label()]
}

// OldvOnly reports whether the label names a baseline-only difference.
func (c Category) OldvOnly() bool {
	return strings.HasSuffix(string(c.Label()), "oldv")
}

// #endregion helpers

// #region diff-result

// DiffResult is the aggregated list of categories for one file-pair
// comparison. Order carries no meaning.
type DiffResult []Category

// Strings returns the labels as plain strings.
func (d DiffResult) Strings() []string {
	out := make([]string, len(d))
	for i, c := range d {
		out[i] = string(c)
	}
	return out
}

// MarshalYAML writes a nil result as null, like encoding/json does.
func (d DiffResult) MarshalYAML() (any, error) {
	if d == nil {
		return nil, nil
	}
	return []Category(d), nil
}

// ParseDiffResult builds a DiffResult from plain labels.
func ParseDiffResult(labels []string) DiffResult {
	out := make(DiffResult, len(labels))
	for i, l := range labels {
		out[i] = Category(l)
	}
	return out
}

// #endregion diff-result
