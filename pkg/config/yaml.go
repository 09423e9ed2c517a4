package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlIndent matches the indentation of the generated template.
const yamlIndent = 2

// ToYAML serializes the persisted fields of the configuration.
func (c *Config) ToYAML() ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(yamlIndent)

	if err := encoder.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}

	return buf.Bytes(), nil
}

// ToYAMLWithComments serializes the configuration after a block of comment
// lines, one "# " line per entry.
func (c *Config) ToYAMLWithComments(comments ...string) ([]byte, error) {
	body, err := c.ToYAML()
	if err != nil || len(comments) == 0 {
		return body, err
	}

	var buf bytes.Buffer
	for _, comment := range comments {
		for _, line := range strings.Split(comment, "\n") {
			buf.WriteString(strings.TrimRight("# "+line, " "))
			buf.WriteByte('\n')
		}
	}
	buf.WriteByte('\n')
	buf.Write(body)

	return buf.Bytes(), nil
}

// ToJSON serializes the persisted fields of the configuration as indented
// JSON with a trailing newline.
func (c *Config) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}
