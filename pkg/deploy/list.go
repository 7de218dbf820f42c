package deploy

import (
	"fmt"
	"io"
	"strings"

	"github.com/talves/gameservers/pkg/stack"
)

// PrintStacks lists the top level stacks of a manifest in deployment order, each followed by its nested stacks.
func PrintStacks(w io.Writer, m stack.Manifest) error {
	return printStacks(w, m, "", 0)
}

func printStacks(w io.Writer, m stack.Manifest, parent string, depth int) error {
	for _, sm := range m.Stacks {
		if sm.Parent != parent {
			continue
		}
		line := fmt.Sprintf("%s%s (%d resources)", strings.Repeat("  ", depth), sm.Name, sm.Resources)
		if len(sm.Dependencies) > 0 {
			line += " depends on " + strings.Join(sm.Dependencies, ", ")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if err := printStacks(w, m, sm.Name, depth+1); err != nil {
			return err
		}
	}
	return nil
}
