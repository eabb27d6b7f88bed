package ports

import "github.com/aretw0/mbt/pkg/domain"

// Session is a generation run driven one step at a time by a remote client.
type Session interface {
	HasNextStep() (bool, error)
	NextStep() (domain.Step, error)
	Backtrack() bool
	CurrentState() string
	DataValue(name string) (string, error)
	Fulfilment() float64

	StatisticsCompact() string
	StatisticsString() string
	StatisticsVerbose() string
}
