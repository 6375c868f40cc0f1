package render

import (
	"html/template"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/kurihiro0119/repo-analyzer/internal/domain"
)

// RootName labels the synthetic node that holds the top-level entries
const RootName = "root"

// TreeNode is a positioned directory entry. X runs along depth, Y along siblings.
type TreeNode struct {
	Name        string
	Type        string
	Depth       int
	Parent      int
	HasChildren bool
	X           float64
	Y           float64
	Fill        string
}

// LabelX is the label offset from the node center
func (n TreeNode) LabelX() int {
	if n.HasChildren {
		return -10
	}
	return 10
}

// LabelAnchor is the label text-anchor
func (n TreeNode) LabelAnchor() string {
	if n.HasChildren {
		return "end"
	}
	return "start"
}

// TreeLink joins a parent to a child by node index
type TreeLink struct {
	Source int
	Target int
	Path   string
}

// TreeChart is the directory tree
type TreeChart struct {
	Width   int
	Height  int
	OffsetX int
	Nodes   []TreeNode
	Links   []TreeLink
}

type layoutNode struct {
	data     domain.DirectoryNode
	parent   *layoutNode
	children []*layoutNode
	depth    int
	breadth  float64
	index    int
}

// NewTreeChart wraps the top-level entries in a synthetic root and lays the
// hierarchy out left to right. Leaves are spaced in order and each parent is
// centered over its children. Returns nil for an empty tree.
func NewTreeChart(entries []domain.DirectoryNode) *TreeChart {
	if len(entries) == 0 {
		return nil
	}
	c := &TreeChart{Width: 600, Height: 400, OffsetX: 40}
	dx := float64(c.Height - 40)
	dy := float64(c.Width - 160)

	root := build(domain.DirectoryNode{Name: RootName, Children: entries}, nil, 0)

	var prevLeaf *layoutNode
	maxDepth := 0
	var place func(n *layoutNode)
	place = func(n *layoutNode) {
		if n.depth > maxDepth {
			maxDepth = n.depth
		}
		if len(n.children) == 0 {
			if prevLeaf != nil {
				n.breadth = prevLeaf.breadth + separation(prevLeaf, n)
			}
			prevLeaf = n
			return
		}
		for _, child := range n.children {
			place(child)
		}
		n.breadth = (n.children[0].breadth + n.children[len(n.children)-1].breadth) / 2
	}
	place(root)

	order := breadthFirst(root)
	left, right := order[0], order[0]
	for _, n := range order {
		if n.breadth < left.breadth {
			left = n
		}
		if n.breadth > right.breadth {
			right = n
		}
	}
	s := 1.0
	if left != right {
		s = separation(left, right) / 2
	}
	tx := s - left.breadth
	kx := dx / (right.breadth + s + tx)
	ky := dy / math.Max(1, float64(maxDepth))

	for i, n := range order {
		n.index = i
		node := TreeNode{
			Name:        n.data.Name,
			Type:        n.data.Type,
			Depth:       n.depth,
			Parent:      -1,
			HasChildren: len(n.children) > 0,
			X:           float64(n.depth) * ky,
			Y:           (n.breadth + tx) * kx,
			Fill:        ColorFile,
		}
		if n.data.Type == domain.NodeTypeDir {
			node.Fill = ColorPrimary
		}
		if n.parent != nil {
			node.Parent = n.parent.index
		}
		c.Nodes = append(c.Nodes, node)
	}
	for i, node := range c.Nodes {
		if node.Parent < 0 {
			continue
		}
		c.Links = append(c.Links, TreeLink{
			Source: node.Parent,
			Target: i,
			Path:   horizontalLink(c.Nodes[node.Parent], node),
		})
	}
	return c
}

func build(d domain.DirectoryNode, parent *layoutNode, depth int) *layoutNode {
	n := &layoutNode{data: d, parent: parent, depth: depth}
	for _, child := range d.Children {
		n.children = append(n.children, build(child, n, depth+1))
	}
	return n
}

func separation(a, b *layoutNode) float64 {
	if a.parent == b.parent {
		return 1
	}
	return 2
}

func breadthFirst(root *layoutNode) []*layoutNode {
	queue := []*layoutNode{root}
	for i := 0; i < len(queue); i++ {
		queue = append(queue, queue[i].children...)
	}
	return queue
}

// horizontalLink is a cubic curve leaving and entering horizontally
func horizontalLink(from, to TreeNode) string {
	mid := (from.X + to.X) / 2
	return "M" + num(from.X) + "," + num(from.Y) +
		"C" + num(mid) + "," + num(from.Y) +
		"," + num(mid) + "," + num(to.Y) +
		"," + num(to.X) + "," + num(to.Y)
}

// SVG renders the chart
func (c *TreeChart) SVG() template.HTML {
	return writeSVG(c.Width, c.Height, func(canvas *svg.SVG) {
		canvas.Translate(c.OffsetX, 0)
		for _, l := range c.Links {
			canvas.Path(l.Path, `class="link"`, `fill="none"`, attr("stroke", ColorLink), `stroke-width="1.5"`)
		}
		for _, n := range c.Nodes {
			canvas.Gtransform("translate(" + num(n.X) + "," + num(n.Y) + ")")
			canvas.Circle(0, 0, 5, attr("fill", n.Fill))
			canvas.Text(n.LabelX(), 0, n.Name, `dy="3"`, attr("text-anchor", n.LabelAnchor()), `font-size="10"`)
			canvas.Gend()
		}
		canvas.Gend()
	})
}
