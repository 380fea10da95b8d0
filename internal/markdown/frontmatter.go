// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import (
	"bytes"
	"fmt"

	"go.yaml.in/yaml/v3"
)

const frontMatterDelimiter = "---"

// Formatter serializes a front matter value.
type Formatter interface {
	Format(v any) (string, error)
}

// YAMLFormatter writes front matter as two-space indented YAML.
type YAMLFormatter struct{}

// Format implements Formatter. The result always ends with a newline.
func (YAMLFormatter) Format(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encoding front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding front matter: %w", err)
	}
	return buf.String(), nil
}

// Document assembles a Markdown file from formatted front matter and body.
func Document(frontMatter, body string) string {
	var b bytes.Buffer
	b.WriteString(frontMatterDelimiter + "\n")
	b.WriteString(frontMatter)
	if len(frontMatter) > 0 && frontMatter[len(frontMatter)-1] != '\n' {
		b.WriteByte('\n')
	}
	b.WriteString(frontMatterDelimiter + "\n\n")
	b.WriteString(body)
	b.WriteByte('\n')
	return b.String()
}
