// Package harness runs scripted game scenarios deterministically.
//
// A scenario is a YAML file naming an input mode, the exact operands each
// challenge will get, a list of player steps and a list of assertions.
// The harness drives the real engine with a manual clock, so timer
// callbacks, spawns and removals happen at exactly the scripted instants.
//
// Example:
//
//	name: correct_answer
//	description: A partial answer is ignored, the full answer scores.
//	mode: direct
//	operands: [[3, 4]]
//	steps:
//	  - action: start
//	  - action: advance
//	    duration: 2s
//	  - action: text
//	    challenge: 1
//	    value: "12"
//	    expect:
//	      score: 100
//	assertions:
//	  - type: trace_count
//	    kind: correct
//	    count: 1
//
// Traces are compared against golden files (see RunWithGolden) written as
// canonical JSON Lines by package trace.
package harness
