/*
Package machine implements the state machines that walk a model graph.

FiniteStateMachine owns the traversal position, the history stack used for backtracking and
the visit counters from which coverage is computed. ExtendedFiniteStateMachine adds a
string-valued data space: edge guards decide whether an edge is admissible and edge actions
assign variables when the edge is walked.

Guards and actions use a small expression language:

	e_Withdraw[balance >= 10 && card == 'valid']/balance -= 10; withdrawals++

A value is truthy when it is neither empty nor "false". Referencing an undefined variable
fails with domain.ErrUnknownVariable.
*/
package machine
