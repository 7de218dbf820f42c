package cloudformation

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/talves/gameservers/pkg/construct"
	"github.com/talves/gameservers/pkg/logging"
	"github.com/talves/gameservers/pkg/provider/aws/resources"
	"go.uber.org/zap"
)

type (
	// StackDefinition is everything the compiler needs to know about a stack.
	StackDefinition struct {
		// Name is the stack name, which is also the namespace of all resources in Resources.
		Name        string
		Description string
		Resources   construct.Graph
		// DependsOn lists ordering between resources of the stack which does not come from a reference.
		DependsOn []construct.Edge
		Outputs   []OutputDefinition
		// Parent is set for nested stacks to the name of the stack that contains them.
		Parent string
	}

	OutputDefinition struct {
		Name        string
		Description string
		Value       construct.Value
		// ExportName, when set, exports the output for other stacks to import.
		ExportName string
	}

	// Compiler renders stacks to templates. Stacks must be compiled in dependency order: a reference to a resource
	// of another stack adds an export to the already compiled template of that stack.
	Compiler struct {
		stacks map[string]*stackContext
		// exports maps each exported value to its export name.
		exports map[construct.IaCValue]string
	}

	stackContext struct {
		compiler *Compiler
		def      StackDefinition
		template *Template
		sealed   bool
	}

	// renderer builds the template resource of a single construct resource.
	renderer func(ctx *stackContext, r construct.Resource) (*Resource, error)
)

func NewCompiler() *Compiler {
	return &Compiler{
		stacks:  make(map[string]*stackContext),
		exports: make(map[construct.IaCValue]string),
	}
}

// Compile renders the stack. Errors for individual resources are accumulated so that all of them are reported.
func (c *Compiler) Compile(ctx context.Context, def StackDefinition) (*Template, error) {
	log := logging.GetLogger(ctx).Named("cloudformation").With(logging.StackField(def.Name))

	if _, ok := c.stacks[def.Name]; ok {
		return nil, fmt.Errorf("stack %s already compiled", def.Name)
	}
	if def.Resources == nil {
		def.Resources = construct.NewGraph()
	}
	sc := &stackContext{
		compiler: c,
		def:      def,
		template: NewTemplate(def.Description),
	}
	c.stacks[def.Name] = sc

	errs := construct.WalkGraphReverse(def.Resources, func(id construct.ResourceId, res construct.Resource) error {
		if id.Namespace != def.Name {
			return fmt.Errorf("resource %s does not belong to stack %s", id, def.Name)
		}
		logicalId := LogicalId(id)
		if _, ok := sc.template.Resources[logicalId]; ok {
			return fmt.Errorf("resource %s has the logical id %s of another resource", id, logicalId)
		}
		render, ok := renderers[id.Type]
		if !ok {
			return fmt.Errorf("no cloudformation renderer for resource type %s", id.QualifiedTypeName())
		}
		tr, err := render(sc, res)
		if err != nil {
			return fmt.Errorf("could not render %s: %w", id, err)
		}
		tr.Properties = prune(tr.Properties)
		sc.template.Resources[logicalId] = tr
		log.Debug("rendered resource", logging.ResourceIdField(id), zap.String("logical_id", logicalId), zap.String("type", tr.Type))
		return nil
	})
	errs = errors.Join(errs, sc.addDependsOn())
	errs = errors.Join(errs, sc.addOutputs())
	if errs != nil {
		return nil, errs
	}
	log.Debug("compiled stack", zap.Int("resources", len(sc.template.Resources)), zap.Int("outputs", len(sc.template.Outputs)))
	return sc.template, nil
}

// Template returns the compiled template of the stack, or nil if it has not been compiled.
func (c *Compiler) Template(stackName string) *Template {
	if sc, ok := c.stacks[stackName]; ok {
		return sc.template
	}
	return nil
}

// Seal marks the template of the stack as final. It is called once a template is serialized (for example to
// be hashed as a nested stack asset) after which adding an export to it is an error.
func (c *Compiler) Seal(stackName string) {
	if sc, ok := c.stacks[stackName]; ok {
		sc.sealed = true
	}
}

func (sc *stackContext) addDependsOn() error {
	var errs error
	for _, e := range sc.def.DependsOn {
		if e.Source.Namespace != sc.def.Name || e.Target.Namespace != sc.def.Name {
			errs = errors.Join(errs, fmt.Errorf("depends on %s -> %s crosses stacks, use a stack dependency instead", e.Source, e.Target))
			continue
		}
		src, ok := sc.template.Resources[LogicalId(e.Source)]
		if !ok {
			errs = errors.Join(errs, fmt.Errorf("depends on source %s is not in stack %s", e.Source, sc.def.Name))
			continue
		}
		target := LogicalId(e.Target)
		if _, ok := sc.template.Resources[target]; !ok {
			errs = errors.Join(errs, fmt.Errorf("depends on target %s is not in stack %s", e.Target, sc.def.Name))
			continue
		}
		if !slices.Contains(src.DependsOn, target) {
			src.DependsOn = append(src.DependsOn, target)
			slices.Sort(src.DependsOn)
		}
	}
	return errs
}

func (sc *stackContext) addOutputs() error {
	var errs error
	for _, out := range sc.def.Outputs {
		value, err := sc.value(out.Value)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("output %s: %w", out.Name, err))
			continue
		}
		o := &Output{Description: out.Description, Value: value}
		if out.ExportName != "" {
			o.Export = &Export{Name: out.ExportName}
		}
		sc.template.Outputs[OutputId(out.Name)] = o
	}
	return errs
}

// value renders a value for use in this stack's template.
func (sc *stackContext) value(v construct.Value) (any, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case construct.IaCValue:
		return sc.iacValue(v)
	case *construct.IaCValue:
		if v == nil {
			return nil, nil
		}
		return sc.iacValue(*v)
	case construct.FormattedValue:
		return sc.formatted(v)
	case *construct.FormattedValue:
		if v == nil {
			return nil, nil
		}
		return sc.formatted(*v)
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func (sc *stackContext) iacValue(v construct.IaCValue) (any, error) {
	if v.IsZero() {
		return nil, nil
	}
	if v.IsLiteral() {
		return v.Property, nil
	}
	if v.ResourceId.Namespace == sc.def.Name {
		return sc.attribute(v)
	}
	exportName, err := sc.compiler.export(sc, v)
	if err != nil {
		return nil, err
	}
	return ImportValue(exportName), nil
}

// attribute renders a reference to a resource of this stack.
func (sc *stackContext) attribute(v construct.IaCValue) (any, error) {
	if _, err := sc.def.Resources.Vertex(v.ResourceId); err != nil {
		return nil, fmt.Errorf("referenced resource %s is not in stack %s: %w", v.ResourceId, sc.def.Name, err)
	}
	attrs, ok := attributes[v.ResourceId.Type]
	if !ok {
		return nil, fmt.Errorf("resource type %s has no attributes", v.ResourceId.QualifiedTypeName())
	}
	attr, ok := attrs[v.Property]
	if !ok {
		return nil, fmt.Errorf("resource type %s has no attribute %q", v.ResourceId.QualifiedTypeName(), v.Property)
	}
	if attr == refAttribute {
		return Ref(LogicalId(v.ResourceId)), nil
	}
	return GetAtt(LogicalId(v.ResourceId), attr), nil
}

// export makes the value available to the consuming stack and returns its export name.
func (c *Compiler) export(consumer *stackContext, v construct.IaCValue) (string, error) {
	if name, ok := c.exports[v]; ok {
		return name, nil
	}
	producer, ok := c.stacks[v.ResourceId.Namespace]
	if !ok {
		return "", fmt.Errorf("%s references %s of stack %s which has not been compiled", consumer.def.Name, v, v.ResourceId.Namespace)
	}
	if consumer.def.Parent == producer.def.Name || producer.def.Parent == consumer.def.Name {
		return "", fmt.Errorf("cannot reference %s between nested stack %s and its parent", v, consumer.def.Name)
	}
	if producer.sealed {
		return "", fmt.Errorf("cannot export %s from stack %s: its template is already final", v, producer.def.Name)
	}
	value, err := producer.attribute(v)
	if err != nil {
		return "", err
	}
	outputId := "ExportsOutput" + OutputId(v.Property) + LogicalId(v.ResourceId)
	name := fmt.Sprintf("%s:%s", producer.def.Name, outputId)
	producer.template.Outputs[outputId] = &Output{
		Value:  value,
		Export: &Export{Name: name},
	}
	c.exports[v] = name
	return name, nil
}

var placeholderPattern = regexp.MustCompile(`\$\{([^!}][^}]*)\}`)

func (sc *stackContext) formatted(v construct.FormattedValue) (any, error) {
	if len(v.Values) == 0 {
		if !strings.Contains(v.Format, "${") {
			return v.Format, nil
		}
		return Sub(v.Format, nil), nil
	}
	vars := make(map[string]any, len(v.Values))
	var errs error
	for name, val := range v.Values {
		if !strings.Contains(v.Format, "${"+name+"}") {
			errs = errors.Join(errs, fmt.Errorf("variable %s is not used in %q", name, v.Format))
			continue
		}
		rendered, err := sc.iacValue(val)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		vars[name] = rendered
	}
	if errs != nil {
		return nil, errs
	}
	return Sub(v.Format, vars), nil
}

// subVariables collects the variables of a Sub built from several values.
type subVariables struct {
	sc   *stackContext
	vars map[string]any
}

func (sc *stackContext) newSubVariables() *subVariables {
	return &subVariables{sc: sc, vars: make(map[string]any)}
}

// placeholder renders the value as text to embed in a Sub format, adding variables as needed. Literal text
// has its `${` escaped so it is not substituted.
func (s *subVariables) placeholder(v construct.Value) (string, error) {
	switch v := v.(type) {
	case construct.IaCValue:
		if v.IsLiteral() {
			return escapeSub(v.Property), nil
		}
		rendered, err := s.sc.iacValue(v)
		if err != nil {
			return "", err
		}
		return "${" + s.add(rendered) + "}", nil

	case construct.FormattedValue:
		renames := make(map[string]string, len(v.Values))
		for name, val := range v.Values {
			rendered, err := s.sc.iacValue(val)
			if err != nil {
				return "", err
			}
			renames[name] = s.add(rendered)
		}
		return placeholderPattern.ReplaceAllStringFunc(v.Format, func(m string) string {
			name := m[2 : len(m)-1]
			if renamed, ok := renames[name]; ok {
				return "${" + renamed + "}"
			}
			return m
		}), nil

	case nil:
		return "", nil

	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

func (s *subVariables) add(rendered any) string {
	name := fmt.Sprintf("Var%d", len(s.vars))
	s.vars[name] = rendered
	return name
}

func escapeSub(s string) string {
	return strings.ReplaceAll(s, "${", "${!")
}

// prune removes unset properties so that they are left to their CloudFormation defaults. Zero numbers and false
// are kept. Intrinsic functions are kept as they are: their arguments may be empty (`Fn::GetAZs: ""`).
func prune(props map[string]any) map[string]any {
	for k, v := range props {
		if isEmpty(v) {
			delete(props, k)
			continue
		}
		switch v := v.(type) {
		case map[string]any:
			if isIntrinsic(v) {
				continue
			}
			if pruned := prune(v); pruned != nil {
				props[k] = pruned
			} else {
				delete(props, k)
			}
		case []any:
			for i, item := range v {
				if m, ok := item.(map[string]any); ok && !isIntrinsic(m) {
					v[i] = prune(m)
				}
			}
		}
	}
	if len(props) == 0 {
		return nil
	}
	return props
}

// isIntrinsic reports whether the map is a `Ref` or an `Fn::` function.
func isIntrinsic(m map[string]any) bool {
	if len(m) != 1 {
		return false
	}
	for k := range m {
		return k == "Ref" || strings.HasPrefix(k, "Fn::")
	}
	return false
}

func isEmpty(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

// removalPolicy sets the deletion and update-replace policies. Types that cannot take a snapshot retain the
// resource instead.
func removalPolicy(tr *Resource, policy resources.RemovalPolicy, supportsSnapshot bool) {
	var p string
	switch policy {
	case resources.RemovalPolicyDestroy:
		p = "Delete"
	case resources.RemovalPolicyRetain:
		p = "Retain"
	case resources.RemovalPolicySnapshot:
		p = "Snapshot"
		if !supportsSnapshot {
			p = "Retain"
		}
	default:
		return
	}
	tr.DeletionPolicy = p
	tr.UpdateReplacePolicy = p
}
