// Package scenarios replays YAML docking scenarios against a fresh allocator.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/dockyard/config"
	"github.com/kilianp07/dockyard/core/model"
)

// Expect is the outcome a step must produce. Status is "accepted",
// "rejected" or "error"; Error is matched as a substring.
type Expect struct {
	Status       string       `yaml:"status"`
	AssignedPort model.PortID `yaml:"assigned_port,omitempty"`
	Reason       model.Reason `yaml:"reason,omitempty"`
	Error        string       `yaml:"error,omitempty"`
}

// Step either submits a request or clears the schedule.
type Step struct {
	Request *model.DockingRequest `yaml:"request,omitempty"`
	Clear   bool                  `yaml:"clear,omitempty"`
	Expect  Expect                `yaml:"expect"`
}

type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Ports overrides the default registry when set.
	Ports []config.PortConfig `yaml:"ports,omitempty"`
	Steps []Step              `yaml:"steps"`
	// Schedule lists the mission ids expected per port after the last step.
	Schedule map[model.PortID][]string `yaml:"schedule,omitempty"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	if sc.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	for i, st := range sc.Steps {
		if (st.Request == nil) == !st.Clear {
			return fmt.Errorf("step %d: exactly one of request or clear is required", i)
		}
	}
	return nil
}
