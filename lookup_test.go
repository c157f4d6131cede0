package mustachec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupForeign(t *testing.T) {
	var nilStrPtr *string
	stringForPtr := "string"

	type nested struct{ Inside string }
	type withTags struct {
		Integer  int
		String   string
		Array    [3]int
		Slice    []int
		Boolean  bool
		Nested   nested
		Tagged   string `mustache:"newName"`
		badTag   string `mustache:"fail"`
		bad      string
		ValidPtr *string
		NilPtr   *string
	}

	cases := []struct {
		name      string
		context   interface{}
		lookup    string
		wantValue interface{}
		wantFound bool
	}{
		{"map int", map[string]interface{}{"integer": 123}, "integer", 123, true},
		{"map string", map[string]interface{}{"string": "abc"}, "string", "abc", true},
		{"map nested", map[string]interface{}{"map": map[string]interface{}{"in": "I'm nested!"}}, "map", map[string]interface{}{"in": "I'm nested!"}, true},
		{"map miss", map[string]interface{}{"a": 1}, "missing", nil, false},
		{
			"struct field", withTags{
				Integer: 123, String: "abc", Array: [3]int{1, 2, 3}, Slice: []int{1},
				Boolean: true, Nested: nested{"I'm nested!"}, Tagged: "xyz",
				badTag: "bad", bad: "bad", ValidPtr: &stringForPtr, NilPtr: nil,
			}, "Integer", 123, true,
		},
		{"struct tag", withTags{Tagged: "xyz"}, "newName", "xyz", true},
		{"struct unexported", withTags{bad: "bad"}, "bad", nil, false},
		{"struct tagged-but-unexported", withTags{badTag: "bad"}, "fail", nil, false},
		{"struct ptr field", withTags{ValidPtr: &stringForPtr}, "ValidPtr", &stringForPtr, true},
		{"struct nil ptr field", withTags{NilPtr: nilStrPtr}, "NilPtr", nilStrPtr, true},
		{"slice index", []int{1, 2, 3}, "2", 3, true},
		{"slice out of range", []int{1}, "2", nil, false},
		{"slice negative", []int{1}, "-1", nil, false},
		{"slice non-numeric", []int{1}, "a", nil, false},
		{"array index", [3]int{1, 2, 3}, "0", 1, true},
		{"slice of maps", []map[string]int{{"a": 1}, {"b": 2}}, "1", map[string]int{"b": 2}, true},
		{"pointer dereference", &withTags{Integer: 5}, "Integer", 5, true},
		{"nil value", nil, "anything", nil, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			value, found := lookupForeign(c.lookup, c.context)
			assert.Equal(t, c.wantFound, found)
			if c.wantFound {
				assert.Equal(t, c.wantValue, value)
			}
		})
	}
}

func TestLookupStructMethod(t *testing.T) {
	value, found := lookupForeign("Greeting", greeter{})
	assert.True(t, found)
	assert.Equal(t, "hello", value)
}

type greeter struct{}

func (greeter) Greeting() string { return "hello" }

func TestTruth(t *testing.T) {
	for _, test := range []struct {
		input    interface{}
		expected bool
	}{
		{"abc", true},
		{"", false},
		{123, true},
		{0, false},
		{true, true},
		{false, false},
		{nil, false},
		{[]int{}, false},
		{[]int{1}, true},
		{map[string]int{}, false},
		{NewScope(), true},
	} {
		assert.Equal(t, test.expected, truth(test.input), "truth(%#v)", test.input)
	}
}
