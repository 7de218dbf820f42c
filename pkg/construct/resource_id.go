package construct

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type ResourceId struct {
	Provider string `yaml:"provider" toml:"provider"`
	Type     string `yaml:"type" toml:"type"`
	// Namespace is the name of the stack which owns the resource. Two stacks may declare
	// resources with the same type and name, the namespace keeps them apart and tells the
	// compiler when a reference crosses a stack boundary.
	Namespace string `yaml:"namespace" toml:"namespace"`
	// Name is the construct path of the resource within its stack, for example `MinecraftNetwork/VPC`.
	Name string `yaml:"name" toml:"name"`
}

func (id ResourceId) IsZero() bool {
	return id == ResourceId{}
}

func (id ResourceId) String() string {
	s := id.Provider + ":" + id.Type
	if id.Namespace != "" || strings.Contains(id.Name, ":") {
		s += ":" + id.Namespace
	}
	return s + ":" + id.Name
}

func (id ResourceId) QualifiedTypeName() string {
	return id.Provider + ":" + id.Type
}

func (id ResourceId) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

var (
	resourceProviderPattern  = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	resourceTypePattern      = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	resourceNamespacePattern = regexp.MustCompile(`^[a-zA-Z0-9_#./\-\[\]]*$`)
	resourceNamePattern      = regexp.MustCompile(`^[a-zA-Z0-9_#./\-:\[\] ]*$`)
)

// Parse fills the id from its string form `provider:type[:namespace]:name` without validating the parts.
func (id *ResourceId) Parse(s string) error {
	if s == "" {
		*id = ResourceId{}
		return nil
	}
	parts := strings.Split(s, ":")
	if len(parts) < 3 {
		return fmt.Errorf("invalid number of parts (%d) in resource id '%s'", len(parts), s)
	}
	if len(parts) > 4 {
		parts = append(parts[:3], strings.Join(parts[3:], ":"))
	}
	id.Provider = parts[0]
	id.Type = parts[1]
	if len(parts) == 4 {
		id.Namespace = parts[2]
		id.Name = parts[3]
	} else {
		id.Namespace = ""
		id.Name = parts[2]
	}
	return nil
}

func (id ResourceId) Validate() error {
	if id.IsZero() {
		return nil
	}
	var err error
	if !resourceProviderPattern.MatchString(id.Provider) {
		err = errors.Join(err, fmt.Errorf("invalid provider '%s' (must match %s)", id.Provider, resourceProviderPattern))
	}
	if !resourceTypePattern.MatchString(id.Type) {
		err = errors.Join(err, fmt.Errorf("invalid type '%s' (must match %s)", id.Type, resourceTypePattern))
	}
	if id.Namespace != "" && !resourceNamespacePattern.MatchString(id.Namespace) {
		err = errors.Join(err, fmt.Errorf("invalid namespace '%s' (must match %s)", id.Namespace, resourceNamespacePattern))
	}
	if !resourceNamePattern.MatchString(id.Name) {
		err = errors.Join(err, fmt.Errorf("invalid name '%s' (must match %s)", id.Name, resourceNamePattern))
	}
	return err
}

func (id *ResourceId) UnmarshalText(data []byte) error {
	if err := id.Parse(string(data)); err != nil {
		return err
	}
	if err := id.Validate(); err != nil {
		return fmt.Errorf("invalid resource id '%s': %w", string(data), err)
	}
	return nil
}

func (id ResourceId) MarshalTOML() ([]byte, error) {
	return id.MarshalText()
}

func (id *ResourceId) UnmarshalTOML(data []byte) error {
	return id.UnmarshalText(data)
}
