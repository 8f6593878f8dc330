package io

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/matzehuels/sugarcheck/pkg/pipeline"
	"github.com/matzehuels/sugarcheck/pkg/sugar"
)

// TSVHeader is the header row written by WriteTSV.
var TSVHeader = []string{
	"structure", "residue", "altloc", "supported", "ring_source",
	"denomination", "conformation", "conformation_code",
	"q", "theta", "phi", "bond_rmsd", "angle_rmsd", "sane", "reason",
}

// WriteTSV writes a header and one tab-separated row per residue record.
func WriteTSV(w io.Writer, rep *pipeline.Report) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(TSVHeader); err != nil {
		return err
	}
	for _, rec := range rep.Sugars {
		if err := cw.Write(tsvRow(rep.Structure, rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func tsvRow(structure string, rec *sugar.Sugar) []string {
	row := []string{
		structure,
		rec.Residue.String(),
		rec.AltLoc,
		strconv.FormatBool(rec.Supported),
		rec.RingSource,
		rec.Denomination,
		rec.Conformation,
		strconv.Itoa(rec.ConformationCode.Code()),
		"", "", "", "", "",
		strconv.FormatBool(rec.Sane()),
		rec.Reason,
	}
	if p := rec.Pucker; p != nil {
		row[8] = fixed(p.Q, 3)
		row[9] = fixed(p.Theta, 2)
		row[10] = fixed(p.Phi, 2)
	}
	if g := rec.Geometry; g != nil {
		row[11] = fixed(g.BondRMSD, 3)
		row[12] = fixed(g.AngleRMSD, 2)
	}
	return row
}

func fixed(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
