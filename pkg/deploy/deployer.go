package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/talves/gameservers/pkg/logging"
	"github.com/talves/gameservers/pkg/provider/aws/resources"
	"github.com/talves/gameservers/pkg/stack"
	"go.uber.org/zap"
)

// MAX_TEMPLATE_BODY is the largest template accepted inline, larger templates are read from the asset bucket.
const MAX_TEMPLATE_BODY = 51200

const CHANGE_SET_PREFIX = "gameservers-"

type (
	Deployer struct {
		Clients *Clients
		// Bucket is the expanded name of the asset bucket.
		Bucket       string
		PollInterval time.Duration
		// Out receives the progress of each stack operation, nil disables it.
		Out     io.Writer
		Workers int
		// Images are checked before their stack is deployed.
		Images []ImageCheck
	}

	DeployOptions struct {
		Stacks []string
		// Exclusively deploys only the named stacks, without their dependencies.
		Exclusively bool
	}

	StackResult struct {
		Stack     string
		Status    string
		Unchanged bool
		Outputs   map[string]string
	}

	// stackState is the deployed state of a stack. Missing stacks have an empty status.
	stackState struct {
		Status  string
		Reason  string
		Outputs map[string]string
	}
)

// Deploy uploads the assets of the selected stacks, then deploys each of them in order through a change set.
// It stops at the first stack that fails.
func (d *Deployer) Deploy(ctx context.Context, asm *stack.Assembly, opts DeployOptions) ([]StackResult, error) {
	log := logging.GetLogger(ctx).Named("deploy")
	stacks, err := SelectStacks(asm.Manifest, opts.Stacks, opts.Exclusively, false)
	if err != nil {
		return nil, err
	}

	assets := stackAssets(asm, stacks)
	uploads, err := UploadAssets(ctx, d.Clients.S3, d.Bucket, assets, d.Workers)
	if err != nil {
		return nil, err
	}
	log.Info("assets ready", zap.Int("uploaded", uploads.Uploaded), zap.Int("skipped", uploads.Skipped))

	var results []StackResult
	for _, sm := range stacks {
		for _, check := range d.Images {
			if check.Stack != sm.Name {
				continue
			}
			if _, err := CheckImage(ctx, d.Clients.Ecr, check); err != nil {
				return results, err
			}
		}
		result, err := d.deployStack(ctx, sm, asm.Bodies[sm.Name])
		if err != nil {
			return results, fmt.Errorf("could not deploy stack %s: %w", sm.Name, err)
		}
		results = append(results, result)
	}
	return results, nil
}

func stackAssets(asm *stack.Assembly, stacks []stack.StackManifest) []*resources.FileAsset {
	var keys []string
	for _, sm := range stacks {
		keys = append(keys, sm.Assets...)
	}
	var assets []*resources.FileAsset
	for _, asset := range asm.Assets {
		if slices.Contains(keys, asset.ObjectKey()) {
			assets = append(assets, asset)
		}
	}
	return assets
}

func (d *Deployer) deployStack(ctx context.Context, sm stack.StackManifest, body []byte) (StackResult, error) {
	log := logging.GetLogger(ctx).Named("deploy").With(logging.StackField(sm.Name))
	result := StackResult{Stack: sm.Name}

	state, err := d.describeStack(ctx, sm.Name)
	if err != nil {
		return result, err
	}
	switch {
	case isInProgressStatus(state.Status) && state.Status != string(types.StackStatusReviewInProgress):
		return result, fmt.Errorf("stack is %s, wait for the operation to finish", state.Status)

	case state.Status == string(types.StackStatusRollbackComplete):
		// a stack that failed to create cannot be updated
		log.Warn("deleting stack which failed to create", zap.String("reason", state.Reason))
		if err := d.deleteStack(ctx, sm.Name); err != nil {
			return result, err
		}
		state = stackState{}
	}

	changeSetType := types.ChangeSetTypeUpdate
	if state.Status == "" || state.Status == string(types.StackStatusReviewInProgress) {
		changeSetType = types.ChangeSetTypeCreate
	}

	input := &cloudformation.CreateChangeSetInput{
		StackName:     aws.String(sm.Name),
		ChangeSetName: aws.String(CHANGE_SET_PREFIX + uuid.NewString()),
		ChangeSetType: changeSetType,
		Description:   aws.String(sm.Description),
		Capabilities: []types.Capability{
			types.CapabilityCapabilityNamedIam,
			types.CapabilityCapabilityAutoExpand,
		},
	}
	if len(body) > MAX_TEMPLATE_BODY {
		url, err := d.uploadTemplate(ctx, sm, body)
		if err != nil {
			return result, err
		}
		input.TemplateURL = aws.String(url)
	} else {
		input.TemplateBody = aws.String(string(body))
	}

	created, err := d.Clients.CloudFormation.CreateChangeSet(ctx, input)
	if err != nil {
		return result, pkgerrors.Wrap(err, "could not create change set")
	}
	changeSet := aws.ToString(created.Id)
	log.Debug("created change set", zap.String("change_set", changeSet), zap.String("type", string(changeSetType)))

	changes, err := d.waitChangeSet(ctx, sm.Name, changeSet)
	if err != nil {
		return result, err
	}
	if changes == 0 {
		if _, err := d.Clients.CloudFormation.DeleteChangeSet(ctx, &cloudformation.DeleteChangeSetInput{
			StackName:     aws.String(sm.Name),
			ChangeSetName: aws.String(changeSet),
		}); err != nil {
			return result, pkgerrors.Wrap(err, "could not delete empty change set")
		}
		log.Info("no changes")
		result.Status = state.Status
		result.Unchanged = true
		result.Outputs = state.Outputs
		return result, nil
	}

	start := time.Now()
	if _, err := d.Clients.CloudFormation.ExecuteChangeSet(ctx, &cloudformation.ExecuteChangeSetInput{
		StackName:     aws.String(sm.Name),
		ChangeSetName: aws.String(changeSet),
	}); err != nil {
		return result, pkgerrors.Wrap(err, "could not execute change set")
	}
	log.Info("deploying", zap.Int("changes", changes))

	final, err := d.waitStack(ctx, sm.Name)
	if err != nil {
		return result, err
	}
	result.Status = final.Status
	result.Outputs = final.Outputs
	if !isSuccessStatus(final.Status) {
		return result, d.failure(ctx, sm.Name, final, start)
	}
	log.Info("deployed", zap.String("status", final.Status))
	return result, nil
}

func (d *Deployer) uploadTemplate(ctx context.Context, sm stack.StackManifest, body []byte) (string, error) {
	asset := resources.NewContentAsset(body, templateExtension(sm.TemplateFile), resources.PackagingTemplate, d.Bucket)
	if _, err := UploadAssets(ctx, d.Clients.S3, d.Bucket, []*resources.FileAsset{asset}, 1); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://s3.%s.amazonaws.com/%s/%s", d.Clients.Region, d.Bucket, asset.ObjectKey()), nil
}

func templateExtension(file string) string {
	if strings.HasSuffix(file, ".yaml") {
		return ".yaml"
	}
	return ".json"
}

func (d *Deployer) describeStack(ctx context.Context, name string) (stackState, error) {
	out, err := d.Clients.CloudFormation.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{StackName: aws.String(name)})
	switch {
	case isStackMissing(err):
		return stackState{}, nil
	case err != nil:
		return stackState{}, pkgerrors.Wrapf(err, "could not describe stack %s", name)
	case len(out.Stacks) == 0:
		return stackState{}, nil
	}
	s := out.Stacks[0]
	state := stackState{
		Status:  string(s.StackStatus),
		Reason:  aws.ToString(s.StackStatusReason),
		Outputs: make(map[string]string),
	}
	for _, o := range s.Outputs {
		state.Outputs[aws.ToString(o.OutputKey)] = aws.ToString(o.OutputValue)
	}
	return state, nil
}

// waitChangeSet waits until the change set is created, and returns its number of changes.
func (d *Deployer) waitChangeSet(ctx context.Context, stackName, changeSet string) (int, error) {
	var changes int
	err := poll(ctx, d.PollInterval, func() (bool, error) {
		out, err := d.Clients.CloudFormation.DescribeChangeSet(ctx, &cloudformation.DescribeChangeSetInput{
			StackName:     aws.String(stackName),
			ChangeSetName: aws.String(changeSet),
		})
		if err != nil {
			return false, pkgerrors.Wrap(err, "could not describe change set")
		}
		switch out.Status {
		case types.ChangeSetStatusCreateComplete:
			changes = len(out.Changes)
			return true, nil
		case types.ChangeSetStatusFailed:
			reason := aws.ToString(out.StatusReason)
			if isNoChanges(reason) {
				return true, nil
			}
			return false, fmt.Errorf("change set failed: %s", reason)
		}
		return false, nil
	})
	return changes, err
}

// waitStack polls the stack until its operation ends, showing its status.
func (d *Deployer) waitStack(ctx context.Context, name string) (stackState, error) {
	bar := newProgress(d.Out, name)
	defer bar.finish()

	var state stackState
	err := poll(ctx, d.PollInterval, func() (bool, error) {
		var err error
		state, err = d.describeStack(ctx, name)
		if err != nil {
			return false, err
		}
		if state.Status == "" {
			// deleted stacks are no longer described
			state.Status = string(types.StackStatusDeleteComplete)
			return true, nil
		}
		bar.status(name, state.Status)
		return !isInProgressStatus(state.Status), nil
	})
	return state, err
}

func (d *Deployer) deleteStack(ctx context.Context, name string) error {
	if _, err := d.Clients.CloudFormation.DeleteStack(ctx, &cloudformation.DeleteStackInput{StackName: aws.String(name)}); err != nil {
		return pkgerrors.Wrapf(err, "could not delete stack %s", name)
	}
	start := time.Now()
	state, err := d.waitStack(ctx, name)
	if err != nil {
		return err
	}
	if state.Status != string(types.StackStatusDeleteComplete) {
		return d.failure(ctx, name, state, start)
	}
	return nil
}

// failure describes why a stack operation failed, from the reasons of the resources that failed since `start`.
func (d *Deployer) failure(ctx context.Context, name string, state stackState, start time.Time) error {
	err := fmt.Errorf("stack %s is %s", name, state.Status)
	if state.Reason != "" {
		err = fmt.Errorf("%w: %s", err, state.Reason)
	}
	reasons, eventsErr := d.failedEvents(ctx, name, start)
	if eventsErr != nil {
		logging.GetLogger(ctx).Named("deploy").Warn("could not describe stack events", zap.Error(eventsErr))
	}
	return errors.Join(append([]error{err}, reasons...)...)
}

func (d *Deployer) failedEvents(ctx context.Context, name string, start time.Time) ([]error, error) {
	out, err := d.Clients.CloudFormation.DescribeStackEvents(ctx, &cloudformation.DescribeStackEventsInput{StackName: aws.String(name)})
	if err != nil {
		return nil, err
	}
	var reasons []error
	// events are newest first
	for i := len(out.StackEvents) - 1; i >= 0; i-- {
		e := out.StackEvents[i]
		if e.Timestamp != nil && e.Timestamp.Before(start.Add(-time.Second)) {
			continue
		}
		status := string(e.ResourceStatus)
		if !strings.HasSuffix(status, "_FAILED") {
			continue
		}
		reason := aws.ToString(e.ResourceStatusReason)
		// cancellations are a consequence of another failure
		if strings.Contains(reason, "Resource creation cancelled") || strings.Contains(reason, "Resource update cancelled") {
			continue
		}
		reasons = append(reasons, fmt.Errorf("%s (%s) %s: %s",
			aws.ToString(e.LogicalResourceId), aws.ToString(e.ResourceType), status, reason))
	}
	return reasons, nil
}
