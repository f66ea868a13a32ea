package diagnose

// #region imports
import (
	"strings"
)

// #endregion

// #region prefixes

const (
	prefixDone         = "done_"
	prefixError        = "error_"
	prefixRetVal       = "ret_val_"
	prefixAfter        = "after_"
	prefixBefore       = "before_"
	prefixIn           = "in_"
	prefixCallbackExec = "callback_exec_"
	prefixAsyncError   = "async_error_in_test"

	valueUndefined = "undefined"

	// Passed-test lines from the runner differ only in their timings.
	passedTestBaseline  = "<     ✓"
	passedTestCandidate = ">     ✓"
	// A blank line before a test title moves around between runs.
	blankTestBaseline  = "< \n<   test"
	blankTestCandidate = "> \n>   test"

	missingLocalModule   = "Cannot find module '."
	missingModule        = "Cannot find module '"
	primordialsUndefined = "ReferenceError: primordials is not defined"
	referenceError       = "ReferenceError: "
	syntaxError          = "SyntaxError: "
)

// #endregion

// #region rule

// Rule is one entry of the ordered classification table.
type Rule struct {
	Name  string
	Match func(h Hunk) bool
	Label func(h Hunk) Category
}

func fixed(c Category) func(Hunk) Category {
	return func(Hunk) Category { return c }
}

func baselineHas(prefix string) func(Hunk) bool {
	return func(h Hunk) bool { return strings.HasPrefix(h.Baseline, baselineMarker+prefix) }
}

func candidateHas(prefix string) func(Hunk) bool {
	return func(h Hunk) bool { return strings.HasPrefix(h.Candidate, candidateMarker+prefix) }
}

func bothHave(baselinePrefix, candidatePrefix string) func(Hunk) bool {
	b, c := baselineHas(baselinePrefix), candidateHas(candidatePrefix)
	return func(h Hunk) bool { return b(h) && c(h) }
}

func baselineContains(substr string) func(Hunk) bool {
	return func(h Hunk) bool { return strings.Contains(h.Baseline, substr) }
}

func argumentDiff(valueCategory Category) func(Hunk) Category {
	return func(h Hunk) Category {
		if isFunctionLiteral(valueAfterColon(h.Baseline)) {
			return FunctionArgImplDiff
		}
		return valueCategory
	}
}

// #endregion

// #region default-rules

// DefaultRules returns the classification table in priority order. The first
// matching rule decides the category.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:  "call-fails-oldv",
			Match: bothHave(prefixDone, prefixError),
			Label: func(h Hunk) Category { return CallFailsOldv.WithDetail(methodName(h.Baseline)) },
		},
		{
			// Shadowed by call-fails-oldv: the condition is the same.
			Name:  "call-fails-newv",
			Match: bothHave(prefixDone, prefixError),
			Label: func(h Hunk) Category { return CallFailsNewv.WithDetail(methodName(h.Candidate)) },
		},
		{
			Name:  "diff-internal-name",
			Match: bothHave(prefixDone, prefixDone),
			Label: func(h Hunk) Category { return DiffInternalName.WithDetail(methodName(h.Candidate)) },
		},
		{
			Name:  "diff-return-value",
			Match: bothHave(prefixRetVal, prefixRetVal),
			Label: fixed(DiffReturnValue),
		},
		{
			// Must stay after the return value check and before the generic
			// argument checks.
			Name: "api-func-no-longer-exists",
			Match: func(h Hunk) bool {
				return bothHave(prefixAfter, prefixAfter)(h) &&
					strings.HasPrefix(valueAfterColon(h.Candidate), valueUndefined)
			},
			Label: fixed(APIFuncNoLongerExists),
		},
		{
			Name:  "api-argument",
			Match: bothHave(prefixBefore, prefixBefore),
			Label: argumentDiff(DiffAPIArgumentValue),
		},
		{
			Name:  "callback-argument",
			Match: bothHave(prefixIn, prefixIn),
			Label: argumentDiff(DiffCallbackArgumentValue),
		},
		{
			Name:  "callback-called-newv",
			Match: baselineHas(prefixCallbackExec),
			Label: func(h Hunk) Category {
				return CallbackCalledNewvNotcalledOldv.WithDetail(callbackName(h.Baseline, baselineMarker+prefixCallbackExec))
			},
		},
		{
			Name:  "async-error-newv",
			Match: baselineHas(prefixAsyncError),
			Label: fixed(InternalAsyncErrorNewv),
		},
		{
			Name:  "callback-called-oldv",
			Match: candidateHas(prefixCallbackExec + " "),
			Label: func(h Hunk) Category {
				return CallbackNotcalledNewvCalledOldv.WithDetail(callbackName(h.Candidate, candidateMarker+prefixCallbackExec))
			},
		},
		{
			Name:  "async-error-oldv",
			Match: candidateHas(prefixAsyncError),
			Label: fixed(InternalAsyncErrorOldv),
		},
		{
			Name: "timing-artifact",
			Match: func(h Hunk) bool {
				return strings.HasPrefix(h.Baseline, passedTestBaseline) &&
					strings.HasPrefix(h.Candidate, passedTestCandidate)
			},
			Label: fixed(NotMeaningful),
		},
		{
			Name: "whitespace-artifact",
			Match: func(h Hunk) bool {
				return strings.HasPrefix(h.Baseline, blankTestBaseline) ||
					strings.HasPrefix(h.Candidate, blankTestCandidate)
			},
			Label: fixed(NotMeaningful),
		},
		{
			// Local modules first: the nonlocal check also matches them.
			Name:  "local-file-removed",
			Match: baselineContains(missingLocalModule),
			Label: fixed(LocalFileRenamedOrRemoved),
		},
		{
			Name:  "nonlocal-dependency-removed",
			Match: baselineContains(missingModule),
			Label: fixed(NonlocalDependencyRemoved),
		},
		{
			Name:  "node-version-mismatch",
			Match: baselineContains(primordialsUndefined),
			Label: fixed(GrubNodeVersionMismatch),
		},
		{
			Name:  "env-ref-missing",
			Match: baselineContains(referenceError),
			Label: fixed(EnvRefNotIncluded),
		},
		{
			Name:  "syntax-error",
			Match: baselineContains(syntaxError),
			Label: fixed(SyntaxErr),
		},
		{
			Name:  "catchall",
			Match: func(Hunk) bool { return true },
			Label: fixed(CatchallUndiagnosed),
		},
	}
}

// #endregion

// #region classifier

// Classifier applies an ordered rule table to hunks.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier over rules, evaluated in slice order.
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

var defaultClassifier = NewClassifier(DefaultRules())

// Classify returns the category of the first rule that matches h.
func (c *Classifier) Classify(h Hunk) Category {
	_, cat := c.ClassifyRule(h)
	return cat
}

// ClassifyRule is Classify that also reports the name of the deciding rule.
func (c *Classifier) ClassifyRule(h Hunk) (string, Category) {
	for _, r := range c.rules {
		if r.Match(h) {
			return r.Name, r.Label(h)
		}
	}
	return "", CatchallUndiagnosed
}

// Rules returns the classifier's table.
func (c *Classifier) Rules() []Rule {
	return c.rules
}

// Classify classifies h with the default rule table.
func Classify(h Hunk) Category {
	return defaultClassifier.Classify(h)
}

// #endregion
