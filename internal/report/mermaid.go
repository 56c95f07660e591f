package report

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/dualopinion/internal/opinion"
)

// DiffMermaid produces a Mermaid graph LR diagram of a diff. Topics are
// grouped into one subgraph per side plus a shared one; conflicts are drawn
// as dotted links between the two personas' nodes.
func DiffMermaid(d opinion.Diff, nameA, nameB string) string {
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(key string) string {
		if id, ok := nodeIDs[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[key] = id
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph LR\n")
	fmt.Fprintf(&sb, "  %s([\"%s\"])\n", getID("persona:A"), escape(nameA))
	fmt.Fprintf(&sb, "  %s([\"%s\"])\n", getID("persona:B"), escape(nameB))

	if len(d.UniqueToA) > 0 {
		fmt.Fprintf(&sb, "  subgraph %s[\"Only %.40s\"]\n", getID("group:A"), escape(nameA))
		for _, u := range d.UniqueToA {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", getID("topic:"+u.Topic), escape(u.Topic))
		}
		sb.WriteString("  end\n")
	}
	if len(d.Agreements)+len(d.Conflicts) > 0 {
		fmt.Fprintf(&sb, "  subgraph %s[\"Shared\"]\n", getID("group:shared"))
		for _, a := range d.Agreements {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", getID("topic:"+a.Topic), escape(a.Topic))
		}
		for _, c := range d.Conflicts {
			fmt.Fprintf(&sb, "    %s{{\"%s\"}}\n", getID("topic:"+c.Topic), escape(c.Topic))
		}
		sb.WriteString("  end\n")
	}
	if len(d.UniqueToB) > 0 {
		fmt.Fprintf(&sb, "  subgraph %s[\"Only %.40s\"]\n", getID("group:B"), escape(nameB))
		for _, u := range d.UniqueToB {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", getID("topic:"+u.Topic), escape(u.Topic))
		}
		sb.WriteString("  end\n")
	}

	a, b := getID("persona:A"), getID("persona:B")
	for _, u := range d.UniqueToA {
		fmt.Fprintf(&sb, "  %s --> %s\n", a, getID("topic:"+u.Topic))
	}
	for _, ag := range d.Agreements {
		fmt.Fprintf(&sb, "  %s --> %s\n", a, getID("topic:"+ag.Topic))
		fmt.Fprintf(&sb, "  %s --> %s\n", b, getID("topic:"+ag.Topic))
	}
	for _, c := range d.Conflicts {
		fmt.Fprintf(&sb, "  %s -. %s .-> %s\n", a, c.PriorityA, getID("topic:"+c.Topic))
		fmt.Fprintf(&sb, "  %s -. %s .-> %s\n", b, c.PriorityB, getID("topic:"+c.Topic))
	}
	for _, u := range d.UniqueToB {
		fmt.Fprintf(&sb, "  %s --> %s\n", b, getID("topic:"+u.Topic))
	}
	return sb.String()
}

// escape keeps labels inside Mermaid's quoted strings.
func escape(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
