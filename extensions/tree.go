package extensions

import (
	"fmt"

	"github.com/m1gwings/treedrawer/tree"

	singleton "github.com/pumped-fn/singleton-go"
)

// RenderRegistry draws the registry's managers as a tree
func RenderRegistry(r *singleton.Registry) string {
	snap := r.Snapshot()
	lines := make([]string, 0, len(snap))
	for _, st := range snap {
		lines = append(lines, formatStatus(st, nil))
	}
	return drawTree("registry", lines)
}

func formatStatus(st singleton.Status, failure error) string {
	switch {
	case failure != nil:
		return fmt.Sprintf("%s ❌ (inits=%d, error: %v)", st.Name, st.InitCount, failure)
	case st.Present:
		return fmt.Sprintf("%s ✓ (inits=%d)", st.Name, st.InitCount)
	default:
		return fmt.Sprintf("%s ○ (inits=%d)", st.Name, st.InitCount)
	}
}

func drawTree(root string, children []string) string {
	t := tree.NewTree(tree.NodeString(root))
	if len(children) == 0 {
		t.AddChild(tree.NodeString("(empty)"))
	}
	for _, child := range children {
		t.AddChild(tree.NodeString(child))
	}
	return t.String()
}
