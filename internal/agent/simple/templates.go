// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package simple

import (
	"text/template"
)

var implTemplates = template.Must(template.New("impl").Parse(`
{{- define "operation" -}}
// Generated from spec "{{.Name}}". Fill in the handler body.

export type {{.Pascal}}Input = Record<string, unknown>;
export type {{.Pascal}}Output = Record<string, unknown>;

export async function {{.Export}}(input: {{.Pascal}}Input): Promise<{{.Pascal}}Output> {
  throw new Error('{{.Name}}: not implemented');
}
{{end}}

{{- define "presentation" -}}
// Generated from spec "{{.Name}}". Render the presentation described by the spec.

export interface {{.Pascal}}Props {
  [key: string]: unknown;
}

export function {{.Export}}(props: {{.Pascal}}Props) {
  return null;
}
{{end}}

{{- define "form" -}}
// Generated from spec "{{.Name}}". Wire the fields declared by the spec.

export type {{.Pascal}}Values = Record<string, unknown>;

export interface {{.Pascal}}FormProps {
  onSubmit: (values: {{.Pascal}}Values) => Promise<void> | void;
}

export function {{.Export}}({ onSubmit }: {{.Pascal}}FormProps) {
  return null;
}
{{end}}

{{- define "workflow" -}}
// Generated from spec "{{.Name}}". Implement each step of the workflow.

export interface {{.Pascal}}Context {
  [key: string]: unknown;
}

export async function {{.Export}}(ctx: {{.Pascal}}Context): Promise<void> {
  throw new Error('{{.Name}}: not implemented');
}
{{end}}

{{- define "event" -}}
// Generated from spec "{{.Name}}". React to the event payload.

export type {{.Pascal}}Payload = Record<string, unknown>;

export async function {{.Export}}(payload: {{.Pascal}}Payload): Promise<void> {
  throw new Error('{{.Name}}: not implemented');
}
{{end}}
`))

var testTemplate = template.Must(template.New("test").Parse(`import { describe, expect, it } from 'vitest';
import { {{.Export}} } from './{{.Module}}';

describe('{{.Name}}', () => {
  it('is exported', () => {
    expect({{.Export}}).toBeTypeOf('function');
  });

  it.todo('covers the behavior declared by the spec');
});
`))

// view is the data every template renders from.
type view struct {
	Name   string
	Pascal string
	Export string
	Module string
}
