// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package model defines the messages exchanged with the Cursor agent bridge and
// their structpb encoding. The bridge speaks google.protobuf.Struct on both sides
// so the CLI needs no generated stubs.
package model

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Request asks the bridge to run one task.
type Request struct {
	Kind         string
	SpecCode     string
	ExistingCode string
	TargetPath   string
}

// Response is the bridge's answer to a Request.
type Response struct {
	Success     bool
	Code        string
	Errors      []string
	Warnings    []string
	Suggestions []string
	Metadata    map[string]any
}

// ToStruct encodes r as a protobuf Struct.
func (r Request) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"kind":          r.Kind,
		"spec_code":     r.SpecCode,
		"existing_code": r.ExistingCode,
		"target_path":   r.TargetPath,
	})
}

// ResponseFromStruct decodes a bridge answer. Absent fields keep their zero value;
// a field of the wrong type is an error.
func ResponseFromStruct(s *structpb.Struct) (Response, error) {
	var r Response
	if s == nil {
		return r, fmt.Errorf("empty response")
	}
	f := s.GetFields()

	if v, ok := f["success"]; ok {
		b, ok := v.GetKind().(*structpb.Value_BoolValue)
		if !ok {
			return r, fmt.Errorf("field success: expected bool")
		}
		r.Success = b.BoolValue
	}
	if v, ok := f["code"]; ok {
		sv, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return r, fmt.Errorf("field code: expected string")
		}
		r.Code = sv.StringValue
	}

	var err error
	if r.Errors, err = stringList(f, "errors"); err != nil {
		return r, err
	}
	if r.Warnings, err = stringList(f, "warnings"); err != nil {
		return r, err
	}
	if r.Suggestions, err = stringList(f, "suggestions"); err != nil {
		return r, err
	}
	if v, ok := f["metadata"]; ok && v.GetStructValue() != nil {
		r.Metadata = v.GetStructValue().AsMap()
	}
	return r, nil
}

func stringList(f map[string]*structpb.Value, key string) ([]string, error) {
	v, ok := f[key]
	if !ok {
		return nil, nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, nil
	}
	lv := v.GetListValue()
	if lv == nil {
		return nil, fmt.Errorf("field %s: expected list", key)
	}
	out := make([]string, 0, len(lv.GetValues()))
	for i, item := range lv.GetValues() {
		sv, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("field %s[%d]: expected string", key, i)
		}
		out = append(out, sv.StringValue)
	}
	return out, nil
}
