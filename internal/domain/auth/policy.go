package auth

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed policy.yaml
var defaultPolicyYAML []byte

const wildcard = "*"

// Policy is the declarative (role, capability) table. Deny entries win over
// allow entries; unknown roles are denied everything.
type Policy struct {
	rules map[Role]rule
}

type rule struct {
	all   bool
	allow map[Capability]bool
	deny  map[Capability]bool
}

type policyDoc struct {
	Roles map[string]struct {
		Allow []string `yaml:"allow"`
		Deny  []string `yaml:"deny"`
	} `yaml:"roles"`
}

// ParsePolicy decodes a YAML policy document. Capabilities not in
// DefaultCapabilities are rejected so typos fail at startup.
func ParsePolicy(data []byte) (*Policy, error) {
	var doc policyDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	if len(doc.Roles) == 0 {
		return nil, fmt.Errorf("policy defines no roles")
	}
	p := &Policy{rules: make(map[Role]rule, len(doc.Roles))}
	for name, entry := range doc.Roles {
		r := rule{allow: map[Capability]bool{}, deny: map[Capability]bool{}}
		for _, c := range entry.Allow {
			if c == wildcard {
				r.all = true
				continue
			}
			if !KnownCapability(Capability(c)) {
				return nil, fmt.Errorf("role %s: unknown capability %q", name, c)
			}
			r.allow[Capability(c)] = true
		}
		for _, c := range entry.Deny {
			if !KnownCapability(Capability(c)) {
				return nil, fmt.Errorf("role %s: unknown capability %q", name, c)
			}
			r.deny[Capability(c)] = true
		}
		p.rules[Role(name)] = r
	}
	return p, nil
}

func DefaultPolicy() *Policy {
	p, err := ParsePolicy(defaultPolicyYAML)
	if err != nil {
		panic(err)
	}
	return p
}

// LoadPolicy reads path, or returns the embedded default when path is empty.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePolicy(data)
}

func (p *Policy) Allowed(role Role, c Capability) bool {
	if p == nil {
		return false
	}
	r, ok := p.rules[role]
	if !ok || r.deny[c] {
		return false
	}
	return r.all || r.allow[c]
}

// Can reports whether the actor's role grants c.
func (p *Policy) Can(a Actor, c Capability) bool {
	return p.Allowed(a.Role, c)
}
