package construct

import "fmt"

type (
	// Resource is any declaration which ends up as (or resolves to) a cloud provider resource.
	Resource interface {
		Id() ResourceId
	}

	// IaCValue references a property of a resource which is only known once the resource has been
	// deployed, such as its ARN. When Resource is the zero id, Property holds a literal value.
	IaCValue struct {
		ResourceId ResourceId
		Property   string
	}
)

// ValueOf references the property of the resource.
func ValueOf(r Resource, property string) IaCValue {
	return IaCValue{ResourceId: r.Id(), Property: property}
}

// Literal wraps a plain value so it can be used anywhere an IaCValue is accepted.
func Literal(v string) IaCValue {
	return IaCValue{Property: v}
}

func (v IaCValue) IsLiteral() bool {
	return v.ResourceId.IsZero()
}

func (v IaCValue) IsZero() bool {
	return v.ResourceId.IsZero() && v.Property == ""
}

func (v IaCValue) String() string {
	if v.IsLiteral() {
		return v.Property
	}
	return fmt.Sprintf("%s#%s", v.ResourceId, v.Property)
}

type (
	// Value is anything that renders to a single value in the generated template: an IaCValue or a FormattedValue.
	Value interface {
		isValue()
	}

	// FormattedValue is a string with `${Var}` placeholders. Each variable resolves through Values, anything
	// not in Values is left for the provider to resolve (such as `${AWS::Region}`).
	FormattedValue struct {
		Format string
		Values map[string]IaCValue
	}
)

func (IaCValue) isValue() {}

func (FormattedValue) isValue() {}

func Format(format string, values map[string]IaCValue) FormattedValue {
	return FormattedValue{Format: format, Values: values}
}
