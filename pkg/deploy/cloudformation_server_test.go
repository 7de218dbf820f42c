package deploy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
)

func apiError(code, message string) error {
	return &smithy.GenericAPIError{Code: code, Message: message, Fault: smithy.FaultClient}
}

type (
	// cloudFormationServer simulates CloudFormation for tests. Operations are in progress until the stack is
	// described once more.
	cloudFormationServer struct {
		mu sync.Mutex

		stacks     map[string]*simStack
		changeSets map[string]*simChangeSet
		events     map[string][]types.StackEvent
		// failures makes the next execution on a stack fail, with the reason given for its failed resource.
		failures map[string]string
		// outputs are set on a stack when a change set is executed.
		outputs map[string]map[string]string

		changeSetInputs []*cloudformation.CreateChangeSetInput
		deletedStacks   []string
		calls           []string
	}

	simStack struct {
		status   types.StackStatus
		next     types.StackStatus
		template string
		outputs  map[string]string
		// removeOnDescribe is set once the stack is being deleted.
		removeOnDescribe bool
	}

	simChangeSet struct {
		stack        string
		changeSetTyp types.ChangeSetType
		template     string
		status       types.ChangeSetStatus
		next         types.ChangeSetStatus
		reason       string
		changes      int
	}
)

func newCloudFormationServer() *cloudFormationServer {
	return &cloudFormationServer{
		stacks:     make(map[string]*simStack),
		changeSets: make(map[string]*simChangeSet),
		events:     make(map[string][]types.StackEvent),
		failures:   make(map[string]string),
		outputs:    make(map[string]map[string]string),
	}
}

// putStack adds a deployed stack.
func (c *cloudFormationServer) putStack(name string, status types.StackStatus, template string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stacks[name] = &simStack{status: status, template: template, outputs: map[string]string{}}
}

func (c *cloudFormationServer) status(name string) types.StackStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.stacks[name]; ok {
		return s.status
	}
	return ""
}

func missing(name string) error {
	return apiError("ValidationError", fmt.Sprintf("Stack with id %s does not exist", name))
}

func (c *cloudFormationServer) DescribeStacks(
	ctx context.Context,
	input *cloudformation.DescribeStacksInput,
	opts ...func(*cloudformation.Options),
) (*cloudformation.DescribeStacksOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := aws.ToString(input.StackName)
	s, ok := c.stacks[name]
	if !ok {
		return nil, missing(name)
	}
	out := types.Stack{StackName: aws.String(name), StackStatus: s.status}
	for k, v := range s.outputs {
		out.Outputs = append(out.Outputs, types.Output{OutputKey: aws.String(k), OutputValue: aws.String(v)})
	}
	switch {
	case s.removeOnDescribe:
		delete(c.stacks, name)
	case s.next != "":
		s.status, s.next = s.next, ""
	}
	return &cloudformation.DescribeStacksOutput{Stacks: []types.Stack{out}}, nil
}

func (c *cloudFormationServer) DescribeStackEvents(
	ctx context.Context,
	input *cloudformation.DescribeStackEventsInput,
	opts ...func(*cloudformation.Options),
) (*cloudformation.DescribeStackEventsOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := aws.ToString(input.StackName)
	events := c.events[name]
	out := make([]types.StackEvent, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		out = append(out, events[i])
	}
	return &cloudformation.DescribeStackEventsOutput{StackEvents: out}, nil
}

func (c *cloudFormationServer) CreateChangeSet(
	ctx context.Context,
	input *cloudformation.CreateChangeSetInput,
	opts ...func(*cloudformation.Options),
) (*cloudformation.CreateChangeSetOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changeSetInputs = append(c.changeSetInputs, input)

	name := aws.ToString(input.StackName)
	s, exists := c.stacks[name]
	switch input.ChangeSetType {
	case types.ChangeSetTypeCreate:
		if exists && s.status != types.StackStatusReviewInProgress {
			return nil, apiError("AlreadyExistsException", fmt.Sprintf("Stack [%s] already exists", name))
		}
		s = &simStack{status: types.StackStatusReviewInProgress, outputs: map[string]string{}}
		c.stacks[name] = s
	default:
		if !exists {
			return nil, missing(name)
		}
	}

	template := aws.ToString(input.TemplateBody)
	if input.TemplateURL != nil {
		template = "url:" + aws.ToString(input.TemplateURL)
	}
	cs := &simChangeSet{
		stack:        name,
		changeSetTyp: input.ChangeSetType,
		template:     template,
		status:       types.ChangeSetStatusCreatePending,
		next:         types.ChangeSetStatusCreateComplete,
		changes:      1,
	}
	if template == s.template {
		cs.next = types.ChangeSetStatusFailed
		cs.reason = "The submitted information didn't contain changes. Submit different information to create a change set."
		cs.changes = 0
	}
	id := fmt.Sprintf("arn:aws:cloudformation:us-west-2:123456789012:changeSet/%s", aws.ToString(input.ChangeSetName))
	c.changeSets[id] = cs
	return &cloudformation.CreateChangeSetOutput{Id: aws.String(id), StackId: aws.String(name)}, nil
}

func (c *cloudFormationServer) DescribeChangeSet(
	ctx context.Context,
	input *cloudformation.DescribeChangeSetInput,
	opts ...func(*cloudformation.Options),
) (*cloudformation.DescribeChangeSetOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cs, ok := c.changeSets[aws.ToString(input.ChangeSetName)]
	if !ok {
		return nil, apiError("ChangeSetNotFound", "ChangeSet does not exist")
	}
	out := &cloudformation.DescribeChangeSetOutput{
		Status:       cs.status,
		StatusReason: aws.String(cs.reason),
		Changes:      make([]types.Change, cs.changes),
	}
	if cs.next != "" {
		cs.status, cs.next = cs.next, ""
	}
	return out, nil
}

func (c *cloudFormationServer) ExecuteChangeSet(
	ctx context.Context,
	input *cloudformation.ExecuteChangeSetInput,
	opts ...func(*cloudformation.Options),
) (*cloudformation.ExecuteChangeSetOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "ExecuteChangeSet "+aws.ToString(input.StackName))

	id := aws.ToString(input.ChangeSetName)
	cs, ok := c.changeSets[id]
	if !ok || cs.status != types.ChangeSetStatusCreateComplete {
		return nil, apiError("InvalidChangeSetStatus", "ChangeSet cannot be executed")
	}
	delete(c.changeSets, id)
	s := c.stacks[cs.stack]

	if reason, fail := c.failures[cs.stack]; fail {
		delete(c.failures, cs.stack)
		c.events[cs.stack] = append(c.events[cs.stack], types.StackEvent{
			LogicalResourceId:    aws.String("Service"),
			ResourceType:         aws.String("AWS::ECS::Service"),
			ResourceStatus:       types.ResourceStatusCreateFailed,
			ResourceStatusReason: aws.String(reason),
			Timestamp:            aws.Time(time.Now()),
		})
		if cs.changeSetTyp == types.ChangeSetTypeCreate {
			s.status, s.next = types.StackStatusCreateInProgress, types.StackStatusRollbackComplete
		} else {
			s.status, s.next = types.StackStatusUpdateInProgress, types.StackStatusUpdateRollbackComplete
		}
		return &cloudformation.ExecuteChangeSetOutput{}, nil
	}

	s.template = cs.template
	for k, v := range c.outputs[cs.stack] {
		s.outputs[k] = v
	}
	if cs.changeSetTyp == types.ChangeSetTypeCreate {
		s.status, s.next = types.StackStatusCreateInProgress, types.StackStatusCreateComplete
	} else {
		s.status, s.next = types.StackStatusUpdateInProgress, types.StackStatusUpdateComplete
	}
	return &cloudformation.ExecuteChangeSetOutput{}, nil
}

func (c *cloudFormationServer) DeleteChangeSet(
	ctx context.Context,
	input *cloudformation.DeleteChangeSetInput,
	opts ...func(*cloudformation.Options),
) (*cloudformation.DeleteChangeSetOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "DeleteChangeSet "+aws.ToString(input.StackName))

	id := aws.ToString(input.ChangeSetName)
	if _, ok := c.changeSets[id]; !ok {
		return nil, apiError("ChangeSetNotFound", "ChangeSet does not exist")
	}
	delete(c.changeSets, id)
	return &cloudformation.DeleteChangeSetOutput{}, nil
}

func (c *cloudFormationServer) DeleteStack(
	ctx context.Context,
	input *cloudformation.DeleteStackInput,
	opts ...func(*cloudformation.Options),
) (*cloudformation.DeleteStackOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := aws.ToString(input.StackName)
	c.deletedStacks = append(c.deletedStacks, name)
	if s, ok := c.stacks[name]; ok {
		s.status, s.next = types.StackStatusDeleteInProgress, ""
		s.removeOnDescribe = true
	}
	return &cloudformation.DeleteStackOutput{}, nil
}

func (c *cloudFormationServer) GetTemplate(
	ctx context.Context,
	input *cloudformation.GetTemplateInput,
	opts ...func(*cloudformation.Options),
) (*cloudformation.GetTemplateOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := aws.ToString(input.StackName)
	s, ok := c.stacks[name]
	if !ok {
		return nil, missing(name)
	}
	return &cloudformation.GetTemplateOutput{TemplateBody: aws.String(s.template)}, nil
}
