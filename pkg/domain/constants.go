package domain

const (
	// StartLabel is the label of the pseudo-vertex anchoring the entry edges of a model.
	StartLabel = "Start"

	// KindEdge and KindVertex are the values substituted for the kind placeholder of a stub template.
	KindEdge   = "Edge"
	KindVertex = "Vertex"
)
