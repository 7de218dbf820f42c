package cloudformation

const (
	PSEUDO_ACCOUNT_ID = "AWS::AccountId"
	PSEUDO_PARTITION  = "AWS::Partition"
	PSEUDO_REGION     = "AWS::Region"
	PSEUDO_STACK_NAME = "AWS::StackName"
	PSEUDO_URL_SUFFIX = "AWS::URLSuffix"
)

func Ref(logicalId string) map[string]any {
	return map[string]any{"Ref": logicalId}
}

func GetAtt(logicalId, attribute string) map[string]any {
	return map[string]any{"Fn::GetAtt": []any{logicalId, attribute}}
}

func ImportValue(exportName string) map[string]any {
	return map[string]any{"Fn::ImportValue": exportName}
}

// Sub substitutes `${Var}` placeholders in the format. Without variables only pseudo parameters and resource
// logical ids can be substituted.
func Sub(format string, variables map[string]any) map[string]any {
	if len(variables) == 0 {
		return map[string]any{"Fn::Sub": format}
	}
	return map[string]any{"Fn::Sub": []any{format, variables}}
}

func Select(index int, list any) map[string]any {
	return map[string]any{"Fn::Select": []any{index, list}}
}

// GetAZs lists the availability zones of the stack's region.
func GetAZs() map[string]any {
	return map[string]any{"Fn::GetAZs": ""}
}
