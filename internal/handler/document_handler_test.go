package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripUniqueSuffix(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "hex suffix stripped", input: "doc_specs_20260831_a1b2c3d4", want: "doc_specs_20260831"},
		{name: "date segment kept", input: "doc_specs_20260831", want: "doc_specs_20260831"},
		{name: "uppercase not hex", input: "doc_specs_20260831_A1B2C3D4", want: "doc_specs_20260831_A1B2C3D4"},
		{name: "digit suffix after date", input: "doc_specs_20260831_12345678", want: "doc_specs_20260831"},
		{name: "short tail kept", input: "doc_specs_abc", want: "doc_specs_abc"},
		{name: "no underscore", input: "docspecs", want: "docspecs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripUniqueSuffix(tt.input))
		})
	}
}
