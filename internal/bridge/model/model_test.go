// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestRequestToStruct(t *testing.T) {
	s, err := Request{Kind: "validate", SpecCode: "spec", ExistingCode: "impl"}.ToStruct()
	require.NoError(t, err)

	m := s.AsMap()
	assert.Equal(t, "validate", m["kind"])
	assert.Equal(t, "spec", m["spec_code"])
	assert.Equal(t, "impl", m["existing_code"])
	assert.Equal(t, "", m["target_path"])
}

func TestResponseFromStruct(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{
		"success":  false,
		"code":     "",
		"errors":   []any{"missing export"},
		"warnings": nil,
		"metadata": map[string]any{"model": "cursor-small"},
	})
	require.NoError(t, err)

	r, err := ResponseFromStruct(s)
	require.NoError(t, err)
	assert.False(t, r.Success)
	assert.Equal(t, []string{"missing export"}, r.Errors)
	assert.Nil(t, r.Warnings)
	assert.Equal(t, map[string]any{"model": "cursor-small"}, r.Metadata)
}

func TestResponseFromStructRejectsWrongTypes(t *testing.T) {
	for _, fields := range []map[string]any{
		{"success": "yes"},
		{"code": 42},
		{"errors": "not a list"},
		{"suggestions": []any{1.0}},
	} {
		s, err := structpb.NewStruct(fields)
		require.NoError(t, err)
		_, err = ResponseFromStruct(s)
		assert.Error(t, err, fields)
	}
}

func TestResponseFromNilStruct(t *testing.T) {
	_, err := ResponseFromStruct(nil)
	assert.Error(t, err)
}
