// Package pkg provides the libraries behind sugarcheck, which classifies the
// sugar rings of macromolecular models.
//
// # Overview
//
// The pkg directory is organized into these areas:
//
//  1. [model] - Coordinate models, PDB reading and the symmetry-aware neighbor index
//  2. [sugar] - Ring finding, stereocentres, Cremer-Pople puckering and classification
//  3. [refdb] - The reference table of known sugar residues
//  4. [pipeline] - Orchestration (load → classify → report, render artifacts)
//  5. [render] - Bond graph and ring projection images
//  6. [io], [store], [cache] - Report formats, report persistence, result caching
//
// # Architecture
//
// The typical data flow through sugarcheck:
//
//	PDB file (.pdb, .pdb.gz, .pdb.zst)
//	         ↓
//	    [model] package (structure + neighbor index)
//	         ↓
//	    [sugar] package (ring → stereo → pucker → sanity)
//	         ↓
//	    [pipeline] package (report, cached by content hash)
//	         ↓
//	    table / JSON / JSONL / TSV, SVG / PNG
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	report, err := runner.AnalyzeFile(ctx, "1bgc.pdb", pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	for _, rec := range report.Sugars {
//	    fmt.Println(rec.Residue, rec.Denomination, rec.Conformation, rec.Sane())
//	}
package pkg
