// Package conditions decides when a generation run is complete.
//
// A StopCondition is bound to a machine with SetMachine and then polled through
// IsFulfilled. Conditions only read the machine. Several conditions are combined
// with Combinational, which is fulfilled as soon as any member is.
package conditions
