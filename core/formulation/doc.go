// Package formulation translates a maintenance-scheduling problem into a
// constraint model.
//
// Build runs three stages: the variable builder creates start, duration and
// end variables per intervention; the workload aggregator bounds the summed
// workload of every resource and period; the exclusion projector forbids
// excluded pairs from overlapping inside every contiguous run of their
// season. Formulation.Solve hands the finished model to a cp.Solver and maps
// the values back to a schedule, and Verify re-checks a schedule against the
// problem without a solver.
package formulation
