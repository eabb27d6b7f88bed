// Package generators produces test steps by walking a machine through its model.
//
// Every generator implements PathGenerator. Traversal generators (Random,
// ShortestPath, Requirements, List) walk exactly one edge per Next call and
// return the walked edge label with the label of the vertex it led to.
// CodeStub does not walk at all: it renders one templated stub per distinct label.
package generators
