package deploy

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/r3labs/diff"
	cfn "github.com/talves/gameservers/pkg/infra/cloudformation"
	"github.com/talves/gameservers/pkg/stack"
)

type StackDiff struct {
	Stack string
	// New is set for stacks that are not deployed, which have no changes listed.
	New     bool
	Changes diff.Changelog
}

var (
	createColour = color.New(color.FgGreen)
	deleteColour = color.New(color.FgRed)
	updateColour = color.New(color.FgYellow)
	headerColour = color.New(color.Bold)
)

// Diff compares the deployed template of each selected top level stack with the synthesized one.
func (d *Deployer) Diff(ctx context.Context, asm *stack.Assembly, names []string) ([]StackDiff, error) {
	stacks, err := SelectStacks(asm.Manifest, names, true, false)
	if err != nil {
		return nil, err
	}
	differ, err := diff.NewDiffer(diff.SliceOrdering(false))
	if err != nil {
		return nil, err
	}

	var diffs []StackDiff
	for _, sm := range stacks {
		out, err := d.Clients.CloudFormation.GetTemplate(ctx, &cloudformation.GetTemplateInput{
			StackName:     aws.String(sm.Name),
			TemplateStage: types.TemplateStageOriginal,
		})
		if isStackMissing(err) {
			diffs = append(diffs, StackDiff{Stack: sm.Name, New: true})
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "could not get template of %s", sm.Name)
		}

		deployed, err := cfn.Decode([]byte(aws.ToString(out.TemplateBody)))
		if err != nil {
			return nil, fmt.Errorf("deployed %s: %w", sm.Name, err)
		}
		synthesized, err := cfn.Decode(asm.Bodies[sm.Name])
		if err != nil {
			return nil, fmt.Errorf("synthesized %s: %w", sm.Name, err)
		}
		changes, err := differ.Diff(deployed, synthesized)
		if err != nil {
			return nil, fmt.Errorf("could not diff %s: %w", sm.Name, err)
		}
		diffs = append(diffs, StackDiff{Stack: sm.Name, Changes: changes})
	}
	return diffs, nil
}

// PrintDiff writes one line per changed template path.
func PrintDiff(w io.Writer, diffs []StackDiff) error {
	for _, sd := range diffs {
		if _, err := headerColour.Fprintf(w, "Stack %s\n", sd.Stack); err != nil {
			return err
		}
		var err error
		switch {
		case sd.New:
			_, err = createColour.Fprintln(w, "  [+] new stack")
		case len(sd.Changes) == 0:
			_, err = fmt.Fprintln(w, "  no differences")
		}
		if err != nil {
			return err
		}
		for _, c := range sd.Changes {
			path := strings.Join(c.Path, ".")
			switch c.Type {
			case diff.CREATE:
				_, err = createColour.Fprintf(w, "  [+] %s: %v\n", path, c.To)
			case diff.DELETE:
				_, err = deleteColour.Fprintf(w, "  [-] %s: %v\n", path, c.From)
			case diff.UPDATE:
				_, err = updateColour.Fprintf(w, "  [~] %s: %v -> %v\n", path, c.From, c.To)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
