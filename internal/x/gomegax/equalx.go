package gomegax

import (
	"github.com/google/go-cmp/cmp"
	"github.com/onsi/gomega/format"
	"github.com/onsi/gomega/types"
)

// EqualX matches values that are semantically equal under go-cmp, with an
// optional set of cmp options. Failure messages include a cmp diff.
func EqualX(expected interface{}, options ...cmp.Option) types.GomegaMatcher {
	return &equalX{
		expected: expected,
		options:  options,
	}
}

type equalX struct {
	expected interface{}
	options  cmp.Options
}

func (m *equalX) Match(actual interface{}) (bool, error) {
	return cmp.Equal(actual, m.expected, m.options), nil
}

func (m *equalX) FailureMessage(actual interface{}) string {
	if a, ok := actual.(string); ok {
		if e, ok := m.expected.(string); ok {
			return format.MessageWithDiff(a, "to equal", e)
		}
	}

	return format.Message(actual, "to equal", m.expected) +
		"\n\nDiff:\n" + format.IndentString(
		cmp.Diff(actual, m.expected, m.options),
		1,
	)
}

func (m *equalX) NegatedFailureMessage(actual interface{}) string {
	return format.Message(actual, "not to equal", m.expected) +
		"\n\nDiff:\n" + format.IndentString(
		cmp.Diff(actual, m.expected, m.options),
		1,
	)
}
