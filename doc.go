/*
Package mbt generates test sequences by walking a model of the system under test.

The model is a directed graph: vertices are the states of the system and edges the
transitions between them. A walk starts on an edge leaving the Start vertex. Every step
walked is reported as a pair of labels: the edge to perform (navigate) and the state to
check afterwards (verify).

# Building blocks

  - Machine (pkg/machine): the position of the walk, its history and coverage. The
    extended machine adds a data space so edges can carry guards and actions.
  - Stop condition (pkg/conditions): when to stop, e.g. full edge coverage or a
    number of steps. Conditions added to an engine are combined with a logical OR.
  - Generator (pkg/generators): which edge to walk next (random, shortest path to
    uncovered elements, requirement driven, or replay of a fixed list).

# Usage

	b := dsl.New()
	b.Start().Go("LoggedOut", "e_Start")
	b.Add("LoggedOut").Go("LoggedIn", "e_Login")
	b.Add("LoggedIn").Go("LoggedOut", "e_Logout")

	eng, err := mbt.New(b.MustBuild())
	if err != nil {
		log.Fatal(err)
	}
	_ = eng.SetGenerator(generators.KindShortestPath)
	_ = eng.AddCondition(conditions.KindEdgeCoverage, "100")

	for {
		ok, err := eng.HasNextStep()
		if err != nil {
			log.Fatal(err)
		}
		if !ok {
			break
		}
		step, err := eng.NextStep()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(step.Navigate, "->", step.Verify)
	}
	fmt.Print(eng.StatisticsString())

Execute does the same loop and hands every label to a ports.Executor; the dispatch
adapter resolves labels to methods of a Go value.
*/
package mbt
