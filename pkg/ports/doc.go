/*
Package ports defines the interfaces between the generation core and the outside world.

# Key Interfaces

  - Executor: runs the navigate and verify labels of generated steps against the system under test.
  - ModelLoader: turns a model reference (usually a file path) into a graph.
  - SequenceStore: persists recorded sequences for offline replay.
  - Locker: serializes writers of the same sequence across processes.
  - Session: the step-by-step surface the online adapters (HTTP, MCP) drive.
*/
package ports
