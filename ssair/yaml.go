package ssair

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/hlsc/internal/diag"
)

// YAMLProgram mirrors the teacher's YAMLCoreProgram/YAMLInstructionGroup
// shape (core/program.go), generalized from a per-tile CGRA program with
// nested instruction groups to a single flat operation list: an SSA
// ingestion source has no II-scheduling or per-tile routing of its own,
// just one module's ports, resources, and operations.
type YAMLProgram struct {
	Name       string            `yaml:"name"`
	Ports      []YAMLPort        `yaml:"ports"`
	Defaults   map[string]int    `yaml:"defaults"`
	Resources  []YAMLResource    `yaml:"resources"`
	Operations []YAMLOperation   `yaml:"operations"`
}

// YAMLPort mirrors one module port declaration.
type YAMLPort struct {
	Name  string `yaml:"name"`
	Dir   string `yaml:"dir"`
	Width int    `yaml:"width"`
}

// YAMLResource mirrors one named stateful resource declaration.
type YAMLResource struct {
	Kind  string `yaml:"kind"`
	Width int    `yaml:"width"`
	Name  string `yaml:"name"`
}

// YAMLOperation mirrors the teacher's YAMLOperation (opcode plus
// src/dst operands), generalized to the string-operand-reference scheme
// used by Operation.
type YAMLOperation struct {
	ID       int      `yaml:"id"`
	OpCode   string   `yaml:"opcode"`
	Dst      string   `yaml:"dst"`
	Width    int      `yaml:"width"`
	Src      []string `yaml:"src_operands"`
	Instance string   `yaml:"instance"`
	Action   string   `yaml:"action"`
	Args     []string `yaml:"args"`
}

// LoadYAML reads and parses path into a Program, the same load path the
// teacher's LoadProgramFileFromYAML follows for its per-core programs.
func LoadYAML(path string) *Program {
	data, err := os.ReadFile(path)
	diag.Require(err == nil, "ssair: failed to read program file %q: %v", path, err)

	var y YAMLProgram
	err = yaml.Unmarshal(data, &y)
	diag.Require(err == nil, "ssair: failed to parse YAML program %q: %v", path, err)

	prog := &Program{
		Name:     y.Name,
		Defaults: y.Defaults,
	}
	for _, p := range y.Ports {
		dir := p.Dir == "in"
		prog.Ports = append(prog.Ports, PortSpec{Name: p.Name, IsInput: dir, Width: p.Width})
	}
	for _, r := range y.Resources {
		prog.Resources = append(prog.Resources, ResourceSpec{Kind: r.Kind, Width: r.Width, Name: r.Name})
	}
	for _, o := range y.Operations {
		prog.Ops = append(prog.Ops, Operation{
			ID: o.ID, Op: o.OpCode, Dst: o.Dst, Width: o.Width, Src: o.Src,
			Instance: o.Instance, Action: o.Action, Args: o.Args,
		})
	}
	return prog
}
