// Package model holds the atomic model consumed by the sugar analysis:
// structures made of chains, residues and atoms, together with the unit cell
// and space group needed to reason about crystallographic symmetry images.
//
// # Reading
//
// [Open] reads PDB files, optionally gzip or zstd compressed:
//
//	s, err := model.Open("5fji.pdb.gz")
//
// Only the first MODEL of multi-model files is read.
//
// # Neighbor Search
//
// [NeighborIndex] answers radius queries. It indexes the asymmetric unit and
// every symmetry copy that lands near the model, returning [AtomRef] values
// whose Image field names the operator used. [Structure.ImageNear] resolves
// such a reference into coordinates next to a point of interest:
//
//	ix := model.NewNeighborIndex(s, model.DefaultImageMargin)
//	for _, ref := range ix.Near(p, 1.8) {
//	    pos := s.ImageNear(p, ref)
//	    ...
//	}
//
// The index is immutable once built and may be shared across goroutines.
package model
