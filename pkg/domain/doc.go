/*
Package domain contains the model graph and the value types shared by every layer of the
generator.

It defines the directed multigraph that describes the system under test, the parsed edge label
grammar, the steps produced by a generation run and the error taxonomy. This package is kept
pure and free of I/O so that loaders, machines and adapters can depend on it freely.

# Key Entities

  - Graph: The model. Vertices are states, edges are transitions, both carry a stable index.
  - Vertex: A state of the system under test. The vertex labelled "Start" is a pseudo-state.
  - Edge: A transition with a parsed EdgeLabel (name, parameter, guard, action).
  - Step: The (navigate, verify) pair emitted for every walked edge.
  - Sequence: A recorded list of steps, used for offline replay.
*/
package domain
