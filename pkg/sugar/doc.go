// Package sugar classifies cyclic sugar residues in macromolecular models.
//
// # Overview
//
// For a residue that forms a five-membered (furanose) or six-membered
// (pyranose) ring, the package derives:
//
//   - the ring atoms, in canonical order with the ring oxygen first
//   - the anomeric and configurational carbons and their exocyclic substituents
//   - Cremer-Pople puckering parameters and the IUPAC conformation code
//   - the anomer (alpha/beta) and the absolute configuration (D/L)
//   - a sanity diagnosis against ideal ring geometry and a reference table
//
// # Pipeline
//
// A [Classifier] wires the steps together. Each step is also exported so it
// can be used on its own:
//
//	Bonded            element-pair distance windows
//	Analysis.FindRing depth-first cycle search over bonded atoms
//	Analysis.Locate   anomeric and configurational stereo pairs
//	Analyze           Cremer-Pople pucker, anomer and handedness
//	Measure/Validate  ring geometry and sanity flags
//
// # Neighborhood
//
// Neighbor lookups go through the [Neighborhood] interface, normally a
// [model.NeighborIndex] built once per structure. References returned by the
// index may denote symmetry images; they are resolved into a [Site] with the
// image position nearest the querying atom, so bond tests and projections see
// the same coordinates.
//
// # Alternate conformations
//
// An [Analysis] runs on one alternate conformation. Atoms without an
// alternate tag are always admitted; tagged atoms are admitted only when the
// tag matches. Atoms of other conformations are never treated as bonded
// neighbors, ring members or substituents.
//
// # Failure handling
//
// Domain failures (no 5- or 6-membered ring, a template atom missing from the
// residue) do not abort a batch. [Classifier.Classify] always returns a
// record; unsupported records carry Supported=false and the reason.
//
// Classifiers are immutable after construction and safe for concurrent use.
package sugar
