// Package grantling is a Django-compatible template engine.
//
// A template is plain text interleaved with variables, tags and comments.
// Variables look like {{ name }} and are replaced with values from the
// rendering context; a dot walks into struct fields and list indices, and
// filters modify a value before output: {{ value|default:"nothing" }}.
// Tags look like {% tag %} and control the template's logic. Comments use
// {# ... #} and contribute no output.
//
// Supported tags:
//   - {% for x in items %} ... {% empty %} ... {% endfor %}
//   - {% if cond %} ... {% else %} ... {% endif %}
//   - {% block name %} ... {% endblock %}
//   - {% extends 'parent' %}
//   - {% include 'other' %}
//   - {% create 'filename' from 'template' %}
//
// Supported built-in filters: default, length, add, upper, lower. Hosts
// register more with Engine.AddFilter.
//
// # Quick start
//
//	eng := grantling.New()
//	tmpl, err := eng.NewTemplate("hello", "Hello {{ name }}!")
//	if err != nil { ... }
//
//	ctx := eng.CreateContext()
//	ctx.Push()
//	ctx.Set("name", value.FromString("World"))
//
//	var buf bytes.Buffer
//	err = tmpl.Render(&buf, ctx)
//
// The engine sees host data only through the value.List and value.Struct
// contracts; it borrows references and never copies caller-owned object
// graphs. Missing variables, failed field lookups and unknown filters
// render as nothing rather than failing the document: one absent field
// must not abort an entire output file. Parse errors, by contrast, are
// fatal for the template that contains them.
//
// Escaping is pluggable. A context with no escaper writes variable
// expansions verbatim; Context.SetEscaper installs one, and values marked
// raw bypass it.
package grantling
