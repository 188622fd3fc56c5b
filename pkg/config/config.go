package config

import (
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v2"
)

// Defaulter is implemented by config structs that need values filled in
// before the file content is applied.
type Defaulter interface {
	SetDefaults()
}

// FromFile read and parse config from given path and apply environment on it
func FromFile(filePath string, cfg interface{}) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return FromBytes(filePath, content, cfg)
}

// FromBytes renders raw as a text/template with the environment map as data,
// expands ${VAR} references and unmarshals the YAML result into cfg.
func FromBytes(name string, raw []byte, cfg interface{}) error {
	envMap := make(map[string]string)
	for _, envStr := range os.Environ() {
		pair := strings.SplitN(envStr, "=", 2)
		envMap[pair[0]] = pair[1]
	}

	t, err := template.New(name).Option("missingkey=zero").Parse(string(raw))
	if err != nil {
		return err
	}
	strWriter := &strings.Builder{}
	if err := t.Execute(strWriter, envMap); err != nil {
		return err
	}

	if d, ok := cfg.(Defaulter); ok {
		d.SetDefaults()
	}
	content := os.ExpandEnv(strWriter.String())
	return yaml.Unmarshal([]byte(content), cfg)
}
