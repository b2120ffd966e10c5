package fps

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed flows.yaml
var defaultFlowsYAML []byte

// FlowConfig names an executable flow: the request type it serves, whether it
// runs as a split, and the ordered stages it passes through.
type FlowConfig struct {
	Name        string   `yaml:"name"`
	RequestType string   `yaml:"requestType"`
	Split       bool     `yaml:"split"`
	Stages      []string `yaml:"stages"`
}

// HasStage reports whether the flow passes through the given stage.
func (f FlowConfig) HasStage(stage string) bool {
	for _, s := range f.Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// FlowConfigs is the loaded flow configuration set.
type FlowConfigs struct {
	flows map[string]FlowConfig
}

// LoadFlowConfigs parses a YAML flow configuration document.
func LoadFlowConfigs(data []byte) (*FlowConfigs, error) {
	var doc struct {
		Flows []FlowConfig `yaml:"flows"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing flow configs: %w", err)
	}

	flows := make(map[string]FlowConfig, len(doc.Flows))
	for _, f := range doc.Flows {
		if f.Name == "" {
			return nil, fmt.Errorf("flow config without a name")
		}
		if len(f.Stages) == 0 {
			return nil, fmt.Errorf("flow %s has no stages", f.Name)
		}
		if _, ok := flows[f.Name]; ok {
			return nil, fmt.Errorf("duplicate flow name %s", f.Name)
		}
		flows[f.Name] = f
	}
	return &FlowConfigs{flows: flows}, nil
}

// DefaultFlowConfigs loads the flow set embedded with the binary.
func DefaultFlowConfigs() (*FlowConfigs, error) {
	return LoadFlowConfigs(defaultFlowsYAML)
}

// Lookup returns the flow registered under name.
func (c *FlowConfigs) Lookup(name string) (FlowConfig, bool) {
	f, ok := c.flows[name]
	return f, ok
}

// FlowFor selects a flow serving the given request type, preferring the split
// variant when a split was requested.
func (c *FlowConfigs) FlowFor(requestType string, split bool) (FlowConfig, bool) {
	for _, f := range c.flows {
		if f.RequestType == requestType && f.Split == split {
			return f, true
		}
	}
	return FlowConfig{}, false
}

// Names lists the registered flow names.
func (c *FlowConfigs) Names() []string {
	names := make([]string, 0, len(c.flows))
	for name := range c.flows {
		names = append(names, name)
	}
	return names
}
