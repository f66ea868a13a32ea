package diagnose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitHunks(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace-only", "\n  \n", nil},
		{
			"single-change",
			"1c1\n< done_foo.bar(1)\n---\n> error_foo.bar(1): Err\n",
			[]string{"< done_foo.bar(1)\n---\n> error_foo.bar(1): Err\n"},
		},
		{
			"change-then-add",
			"2c2\n< a\n---\n> b\n5a6\n> c\n",
			[]string{"< a\n---\n> b", "> c\n"},
		},
		{
			"range-headers",
			"3,4d2\n< x\n< y\n10,12c8,9\n< p\n---\n> q\n",
			[]string{"< x\n< y", "< p\n---\n> q\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitHunks(tt.raw))
		})
	}
}

func TestParseHunk(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  Hunk
	}{
		{"change", "< a\n< b\n---\n> c", Hunk{Baseline: "< a\n< b", Candidate: "> c"}},
		{"delete", "< a\n< b\n", Hunk{Baseline: "< a\n< b\n"}},
		{"add", "> c\n", Hunk{Candidate: "> c\n"}},
		{"unmarked", "garbage", Hunk{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseHunk(tt.block))
		})
	}
}

func TestSideHelpers(t *testing.T) {
	assert.Equal(t, "undefined", valueAfterColon("> after_a.b: undefined"))
	assert.Equal(t, "x", valueAfterColon("< in_a: x: y"))
	assert.Equal(t, "", valueAfterColon("< no separator"))

	assert.Equal(t, "bar", methodName("< done_foo.bar(1)\n< next"))
	assert.Equal(t, "bar", methodName("< done_foo.bar"))
	assert.Equal(t, "", methodName("< done_foo"))

	assert.Equal(t, "onData", callbackName("< callback_exec_onData\n< x", "< callback_exec_"))
}
