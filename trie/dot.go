package trie

import (
	"fmt"

	"github.com/emicklei/dot"
)

// Dot renders the loaded part of the trie as a graphviz graph. Unresolved
// subtrees show up as hash leaves.
func (self *Trie) Dot() *dot.Graph {
	g := dot.NewGraph(dot.Directed)
	if self.root == nil {
		g.Node("root").Label("empty")
		return g
	}
	self.Hash()
	var id int
	var walk func(n node) dot.Node
	walk = func(n node) dot.Node {
		id++
		ret := g.Node(fmt.Sprint(id))
		switch n := n.(type) {
		case *shortNode:
			ret.Label(fmt.Sprintf("short %x", n.Key))
			g.Edge(ret, walk(n.Val))
		case *fullNode:
			ret.Label("full")
			for i, c := range &n.Children {
				if c != nil {
					g.Edge(ret, walk(c), indices[i])
				}
			}
		case hashNode:
			ret.Label(fmt.Sprintf("hash %x", []byte(n[:4])))
		case valueNode:
			ret.Label(fmt.Sprintf("value %d bytes", len(n)))
		}
		return ret
	}
	walk(self.root)
	return g
}
