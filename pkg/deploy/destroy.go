package deploy

import (
	"context"
	"fmt"

	"github.com/talves/gameservers/pkg/logging"
	"github.com/talves/gameservers/pkg/stack"
)

type DestroyOptions struct {
	Stacks []string
	// Exclusively destroys only the named stacks, leaving the stacks that depend on them.
	Exclusively bool
}

// Destroy deletes the selected stacks, dependents first, waiting for each. Stacks which were never deployed are
// skipped. It returns the names of the deleted stacks.
func (d *Deployer) Destroy(ctx context.Context, m stack.Manifest, opts DestroyOptions) ([]string, error) {
	log := logging.GetLogger(ctx).Named("deploy")
	stacks, err := SelectStacks(m, opts.Stacks, opts.Exclusively, true)
	if err != nil {
		return nil, err
	}

	var deleted []string
	for i := len(stacks) - 1; i >= 0; i-- {
		name := stacks[i].Name
		state, err := d.describeStack(ctx, name)
		if err != nil {
			return deleted, err
		}
		if state.Status == "" {
			log.Info("stack is not deployed", logging.StackField(name))
			continue
		}
		if isInProgressStatus(state.Status) {
			return deleted, fmt.Errorf("stack %s is %s, wait for the operation to finish", name, state.Status)
		}
		log.Info("destroying stack", logging.StackField(name))
		if err := d.deleteStack(ctx, name); err != nil {
			return deleted, err
		}
		deleted = append(deleted, name)
	}
	return deleted, nil
}
