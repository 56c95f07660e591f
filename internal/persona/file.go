package persona

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultsYAML holds the built-in personas.
//
//go:embed defaults.yaml
var defaultsYAML []byte

// personaFile is the on-disk layout of a personas file.
type personaFile struct {
	Personas []Persona `yaml:"personas"`
}

// Parse decodes a personas YAML document.
func Parse(data []byte) ([]Persona, error) {
	var f personaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse personas: %w", err)
	}
	for i := range f.Personas {
		f.Personas[i].ReasoningStyle = ParseStyle(string(f.Personas[i].ReasoningStyle))
	}
	return f.Personas, nil
}

// LoadFile reads personas from a YAML file.
func LoadFile(path string) ([]Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read personas %s: %w", path, err)
	}
	return Parse(data)
}

// Defaults returns the built-in personas.
func Defaults() []Persona {
	personas, err := Parse(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("persona: embedded defaults are invalid: %v", err))
	}
	return personas
}
