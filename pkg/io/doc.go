// Package io reads and writes analysis reports.
//
// # Formats
//
// Writers are looked up by format name in a registry:
//
//   - json: the whole report, indented. This is the only format that can
//     be read back with [ReadReport].
//   - jsonl: one residue record per line, each tagged with its structure,
//     suitable for concatenating the output of many runs.
//   - tsv: one row per residue record with the headline columns, for
//     spreadsheets and shell pipelines.
//
// The CLI adds a lipgloss table on top of these for terminal output.
//
//	if err := io.WriteReport("tsv", os.Stdout, report); err != nil && !io.IsBrokenPipe(err) {
//	    return err
//	}
//
// # TSV Columns
//
// structure, residue, altloc, supported, ring_source, denomination,
// conformation, conformation_code, q, theta, phi, bond_rmsd, angle_rmsd,
// sane, reason. Angles are in degrees with two decimals, lengths in Ångström
// with three. Theta is -1 for five-membered rings.
package io
