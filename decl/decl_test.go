package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVerb(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		verb  Verb
		valid bool
	}{
		{name: "empty is any", text: "", verb: Any, valid: true},
		{name: "upper case", text: "GET", verb: Get, valid: true},
		{name: "padded", text: " Patch ", verb: Patch, valid: true},
		{name: "wildcard", text: "*", verb: Any, valid: true},
		{name: "options verb", text: "OPTIONS", verb: OptionsVerb, valid: true},
		{name: "head", text: "head", verb: Head, valid: true},
		{name: "unknown", text: "fetch", verb: "fetch", valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verb, valid := ParseVerb(tt.text)
			assert.Equal(t, tt.verb, verb)
			assert.Equal(t, tt.valid, valid)
		})
	}
}

func TestKindFixed(t *testing.T) {
	tests := []struct {
		kind  Kind
		verb  Verb
		fixed bool
	}{
		{kind: KindRoute, fixed: false},
		{kind: KindRequestMapping, fixed: false},
		{kind: KindGetMapping, verb: Get, fixed: true},
		{kind: KindPostMapping, verb: Post, fixed: true},
		{kind: KindDeleteMapping, verb: Delete, fixed: true},
		{kind: KindPutMapping, verb: Put, fixed: true},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			verb, fixed := tt.kind.Fixed()
			assert.Equal(t, tt.fixed, fixed)
			assert.Equal(t, tt.verb, verb)
		})
	}
}

func TestOptionsClone(t *testing.T) {
	var nilOptions Options
	assert.NotNil(t, nilOptions.Clone())
	o := Options{"ext": "html"}
	c := o.Clone()
	c["https"] = true
	assert.Len(t, o, 1)
	assert.Equal(t, "app/controller.Foo@Bar", Target("app/controller.Foo", "Bar"))
}
