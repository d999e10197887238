package models

// NetworkGraph is the keyword co-occurrence graph. Nodes are the top
// keywords; an edge joins two keywords that appeared in the same article.
type NetworkGraph struct {
	Nodes []NetworkNode `json:"nodes"`
	Edges []NetworkEdge `json:"edges"`
}

// NetworkNode is a keyword. Value is its frequency and drives node size.
type NetworkNode struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// NetworkEdge joins two node IDs. Value is the co-occurrence count.
type NetworkEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
}

// Empty reports whether the graph has nothing worth drawing.
func (g *NetworkGraph) Empty() bool {
	return g == nil || len(g.Nodes) == 0 || len(g.Edges) == 0
}
