package regex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Compile_aStarB(t *testing.T) {
	a, err := Compile("a*b")
	if !assert.NoError(t, err) {
		return
	}

	assert.True(t, a.IsDeterministic())

	for _, tc := range []struct {
		in     string
		expect bool
	}{
		{"b", true},
		{"ab", true},
		{"aaab", true},
		{"", false},
		{"a", false},
		{"ba", false},
		{"bb", false},
	} {
		got, err := a.Accept(tc.in)
		assert.NoError(t, err)
		assert.Equal(t, tc.expect, got, "input %q", tc.in)
	}
}

func Test_Compile_endsWithAbb(t *testing.T) {
	a, err := Compile("(a|b)*abb")
	if !assert.NoError(t, err) {
		return
	}

	for _, tc := range []struct {
		in     string
		expect bool
	}{
		{"abb", true},
		{"aabb", true},
		{"babb", true},
		{"abbabb", true},
		{"abba", false},
		{"ab", false},
		{"", false},
	} {
		got, err := a.Accept(tc.in)
		assert.NoError(t, err)
		assert.Equal(t, tc.expect, got, "input %q", tc.in)
	}
}

func Test_Compile_alternationOfFixedLengths(t *testing.T) {
	a, err := Compile("aa|bbb|cccc")
	if !assert.NoError(t, err) {
		return
	}

	assert.True(t, a.IsFinite())

	for _, tc := range []struct {
		in     string
		expect bool
	}{
		{"aa", true},
		{"bbb", true},
		{"cccc", true},
		{"aaa", false},
		{"bb", false},
		{"ccccc", false},
		{"", false},
	} {
		got, err := a.Accept(tc.in)
		assert.NoError(t, err)
		assert.Equal(t, tc.expect, got, "input %q", tc.in)
	}
}

func Test_Compile_empty(t *testing.T) {
	a, err := Compile("")
	if !assert.NoError(t, err) {
		return
	}

	accepted, err := a.Accept("")
	assert.NoError(t, err)
	assert.True(t, accepted)

	accepted, err = a.Accept("a")
	assert.NoError(t, err)
	assert.False(t, accepted)
}

func Test_Compile_optional(t *testing.T) {
	a, err := Compile("ab?c")
	if !assert.NoError(t, err) {
		return
	}

	for _, tc := range []struct {
		in     string
		expect bool
	}{
		{"ac", true},
		{"abc", true},
		{"abbc", false},
		{"a", false},
	} {
		got, err := a.Accept(tc.in)
		assert.NoError(t, err)
		assert.Equal(t, tc.expect, got, "input %q", tc.in)
	}
}

func Test_Compile_invalid(t *testing.T) {
	testCases := []string{
		"*",
		"?",
		"(a(a|b)*",
		"a(a))*",
	}

	for _, tc := range testCases {
		t.Run(tc, func(t *testing.T) {
			_, err := Compile(tc)
			assert.Error(t, err)
		})
	}
}

func Test_Parse_Thread_doesNotPanicOnNestedStars(t *testing.T) {
	root, err := Parse("((a*)*)*b")
	if !assert.NoError(t, err) {
		return
	}
	assert.NotPanics(t, func() {
		Thread(root)
		c := newCompiler()
		c.down(root, nil)
	})
}
