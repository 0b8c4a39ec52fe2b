package regex

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dekarrin/simone/internal/automaton"
)

// nodeSet is an unordered collection of syntax-tree nodes, keyed by pointer
// identity.
type nodeSet map[*Node]bool

func (s nodeSet) union(o nodeSet) nodeSet {
	out := make(nodeSet, len(s)+len(o))
	for n := range s {
		out[n] = true
	}
	for n := range o {
		out[n] = true
	}
	return out
}

// compiler holds the down/up memoization tables for a single Compile call.
// The reference implementation's equivalent caches are process-global
// (decorated onto the Node class itself) and must be explicitly cleared
// after every regex_to_dfa call; scoping the cache to one compiler value
// per call achieves the same guaranteed cleanup without a shared mutable
// cache to ever forget to clear.
type compiler struct {
	downCache map[string]nodeSet
	upCache   map[string]nodeSet
}

func newCompiler() *compiler {
	return &compiler{
		downCache: map[string]nodeSet{},
		upCache:   map[string]nodeSet{},
	}
}

func visitedKey(visited nodeSet) string {
	labels := make([]int, 0, len(visited))
	for n := range visited {
		labels = append(labels, n.Label)
	}
	sort.Ints(labels)

	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = strconv.Itoa(l)
	}
	return strings.Join(parts, ",")
}

func cacheKey(n *Node, visited nodeSet) string {
	return strconv.Itoa(n.Label) + "|" + visitedKey(visited)
}

// down returns the set of nodes reachable by descending into n: for a leaf,
// itself; for '|', the union of both branches; for '.', just the left
// branch (concatenation only ever starts a composition from its first
// symbol); for '*'/'?', the branch itself plus whatever follows it (since
// both may be skipped).
func (c *compiler) down(n *Node, visited nodeSet) nodeSet {
	if visited == nil {
		visited = nodeSet{}
	}

	key := cacheKey(n, visited)
	if cached, ok := c.downCache[key]; ok {
		return cached
	}

	var result nodeSet
	if visited[n] {
		if !operators[n.Symbol] {
			result = nodeSet{n: true}
		} else {
			result = nodeSet{}
		}
	} else {
		extended := make(nodeSet, len(visited)+1)
		for v := range visited {
			extended[v] = true
		}
		extended[n] = true

		switch n.Symbol {
		case "|":
			result = c.down(n.Left, extended).union(c.down(n.Right, extended))
		case ".":
			result = c.down(n.Left, extended)
		case "*", "?":
			result = c.down(n.Left, extended).union(c.up(n.Right, extended))
		default:
			result = nodeSet{n: true}
		}
	}

	c.downCache[key] = result
	return result
}

// up returns the set of nodes reachable by ascending out of n toward the
// symbols that may follow it in the overall expression.
func (c *compiler) up(n *Node, visited nodeSet) nodeSet {
	if visited == nil {
		visited = nodeSet{}
	}

	key := cacheKey(n, visited)
	if cached, ok := c.upCache[key]; ok {
		return cached
	}

	var result nodeSet
	switch n.Symbol {
	case "|":
		node := n.Right
		for node.Symbol == "." || node.Symbol == "|" {
			node = node.Right
		}
		result = c.up(node.Right, visited)
	case ".":
		result = c.down(n.Right, visited)
	case "*":
		result = c.down(n.Left, visited).union(c.up(n.Right, visited))
	case "?":
		result = c.up(n.Right, visited)
	case endSymbol:
		result = nodeSet{n: true}
	default:
		panic(fmt.Sprintf("going up on invalid node %q", n.Symbol))
	}

	c.upCache[key] = result
	return result
}

func compositionName(n int) string {
	return "q" + strconv.Itoa(n)
}

// Compile parses, threads, and converts regex into an equivalent DFA using
// the De Simone/Aho composition-table method: no intermediate NFA is ever
// built. An empty regex compiles to the single-state automaton accepting
// only the empty string.
func Compile(regex string) (*automaton.Automaton, error) {
	root, err := Parse(regex)
	if err != nil {
		return nil, err
	}

	a := automaton.New()

	if root == nil {
		if err := a.AddState("q0", true); err != nil {
			return nil, err
		}
		if err := a.SetInitial("q0"); err != nil {
			return nil, err
		}
		return a, nil
	}

	Thread(root)
	c := newCompiler()
	defer c.reset()

	initial := "q0"
	if err := a.AddState(initial, false); err != nil {
		return nil, err
	}
	if err := a.SetInitial(initial); err != nil {
		return nil, err
	}

	compositions := map[string]nodeSet{initial: c.down(root, nil)}
	if compositions[initial][End] {
		if err := a.SetAccepting(initial, true); err != nil {
			return nil, err
		}
	}

	queue := []string{initial}
	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]

		bySymbol := map[string]nodeSet{}
		for node := range compositions[state] {
			if node.Symbol == endSymbol {
				continue
			}
			if bySymbol[node.Symbol] == nil {
				bySymbol[node.Symbol] = nodeSet{}
			}
			bySymbol[node.Symbol][node] = true
		}

		symbols := make([]string, 0, len(bySymbol))
		for sym := range bySymbol {
			symbols = append(symbols, sym)
		}
		sort.Strings(symbols)

		for _, sym := range symbols {
			nextComposition := nodeSet{}
			for node := range bySymbol[sym] {
				nextComposition = nextComposition.union(c.up(node.Right, nil))
			}

			target := ""
			for existing, comp := range compositions {
				if sameComposition(comp, nextComposition) {
					target = existing
					break
				}
			}

			if target == "" {
				target = compositionName(len(compositions))
				compositions[target] = nextComposition
				if err := a.AddState(target, nextComposition[End]); err != nil {
					return nil, err
				}
				queue = append(queue, target)
			}

			if err := a.AddTransition(state, sym, target); err != nil {
				return nil, err
			}
		}
	}

	return a, nil
}

func sameComposition(a, b nodeSet) bool {
	if len(a) != len(b) {
		return false
	}
	for n := range a {
		if !b[n] {
			return false
		}
	}
	return true
}

func (c *compiler) reset() {
	c.downCache = nil
	c.upCache = nil
}
