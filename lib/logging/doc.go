// Package logging provides the stage-tagged logger used by every part
// of the maintenance pipeline.
//
// Key Components:
//
//   - Tag: labels a line with the pipeline stage it originates from
//     (NETWORK, CLEANUP, INDEX, OPTIMIZE, STATS, SYSTEM).
//   - Level: controls which lines are emitted (error, info, debug).
//     ParseLevel turns a configured level name into a Level and
//     accepts warn as an alias for info.
//   - ILogger: the interface handed to the pipeline stages. New wires
//     the real process streams, NewWithWriters substitutes buffers for
//     tests.
//
// Each line carries a UTC timestamp and the tag of the stage it
// belongs to. Debug and info lines go to standard out, error lines to
// standard error, so log processors can split the streams without
// parsing.
package logging
