package model

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// ReadPDB parses a PDB-format coordinate file. Only the first MODEL is read.
// CRYST1 supplies the cell and space group; an unknown space-group symbol or
// a placeholder 1 Å cell disables symmetry expansion (see SpaceGroup.Known).
func ReadPDB(r io.Reader) (*Structure, error) {
	p := pdbParser{
		s:      &Structure{SpaceGroup: P1()},
		chains: make(map[string]int),
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024), 1<<20)
	for sc.Scan() {
		p.lineNo++
		p.line = sc.Text()
		done, err := p.parseLine()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", p.lineNo, err)
		}
		if done {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(p.s.Chains) == 0 {
		return nil, fmt.Errorf("no ATOM or HETATM records")
	}
	return p.s, nil
}

type pdbParser struct {
	s       *Structure
	line    string
	lineNo  int
	chains  map[string]int
	inModel bool
}

func (p *pdbParser) parseLine() (bool, error) {
	switch p.cols(1, 6) {
	case "HEADER":
		p.s.ID = p.cols(63, 66)
	case "CRYST1":
		return false, p.parseCryst1()
	case "MODEL":
		p.inModel = true
	case "ENDMDL":
		return p.inModel, nil
	case "ATOM", "HETATM":
		return false, p.parseAtom()
	}
	return false, nil
}

func (p *pdbParser) parseCryst1() error {
	var c Cell
	fields := []*float64{&c.A, &c.B, &c.C, &c.Alpha, &c.Beta, &c.Gamma}
	spans := [][2]int{{7, 15}, {16, 24}, {25, 33}, {34, 40}, {41, 47}, {48, 54}}
	for i, sp := range spans {
		v, err := p.atof(sp[0], sp[1])
		if err != nil {
			return fmt.Errorf("CRYST1: %w", err)
		}
		*fields[i] = v
	}
	if c.A == 1 && c.B == 1 && c.C == 1 {
		return nil
	}
	p.s.Cell = c

	symbol := p.cols(56, 66)
	if sg, ok := LookupSpaceGroup(symbol); ok {
		p.s.SpaceGroup = sg
		return nil
	}
	// Unknown symbols keep the name but carry no operators.
	p.s.SpaceGroup = SpaceGroup{Name: symbol}
	return nil
}

func (p *pdbParser) parseAtom() error {
	var err error
	a := Atom{
		Name:      p.cols(13, 16),
		AltLoc:    p.cols(17, 17),
		Occupancy: 1,
	}
	if a.Serial, err = p.atoi(7, 11); err != nil {
		a.Serial = 0
	}
	if a.Pos.X, err = p.atof(31, 38); err != nil {
		return err
	}
	if a.Pos.Y, err = p.atof(39, 46); err != nil {
		return err
	}
	if a.Pos.Z, err = p.atof(47, 54); err != nil {
		return err
	}
	if occ := p.cols(55, 60); occ != "" {
		if a.Occupancy, err = strconv.ParseFloat(occ, 64); err != nil {
			return fmt.Errorf("occupancy %q: %w", occ, err)
		}
	}
	if b := p.cols(61, 66); b != "" {
		a.BFactor, _ = strconv.ParseFloat(b, 64)
	}

	het := p.cols(1, 6) == "HETATM"
	a.Element = strings.ToUpper(p.cols(77, 78))
	if a.Element == "" {
		a.Element = inferElement(p.rawCols(13, 16), het)
	}

	seq, err := p.atoi(23, 26)
	if err != nil {
		return err
	}
	res := p.residue(p.rawCols(22, 22), p.cols(18, 20), seq, p.cols(27, 27), het)
	res.Atoms = append(res.Atoms, a)
	return nil
}

// residue returns the residue the current record belongs to, starting a new
// one when the name, number or insertion code changes within the chain.
func (p *pdbParser) residue(chainID, name string, seq int, icode string, het bool) *Residue {
	ci, ok := p.chains[chainID]
	if !ok {
		ci = len(p.s.Chains)
		p.chains[chainID] = ci
		p.s.Chains = append(p.s.Chains, Chain{ID: strings.TrimSpace(chainID)})
	}
	chain := &p.s.Chains[ci]
	if n := len(chain.Residues); n > 0 {
		last := &chain.Residues[n-1]
		if last.Seq == seq && last.ICode == icode && last.Name == name {
			return last
		}
	}
	chain.Residues = append(chain.Residues, Residue{Name: name, Seq: seq, ICode: icode, HetAtm: het})
	return &chain.Residues[len(chain.Residues)-1]
}

var twoLetterElements = map[string]bool{
	"CL": true, "BR": true, "NA": true, "MG": true, "ZN": true, "FE": true,
	"CA": true, "MN": true, "CU": true, "CO": true, "NI": true, "CD": true,
	"SE": true, "HG": true,
}

// inferElement guesses the element from a 4-column atom name field. Names
// starting in column 13 on HETATM records may carry two-letter elements.
func inferElement(field string, het bool) string {
	field = strings.ToUpper(field)
	if het && len(field) >= 2 && field[0] != ' ' && twoLetterElements[field[:2]] {
		return field[:2]
	}
	for _, r := range strings.TrimSpace(field) {
		if unicode.IsLetter(r) {
			return string(r)
		}
	}
	return ""
}

// cols returns the trimmed text in the 1-based inclusive column range.
func (p *pdbParser) cols(start, end int) string {
	return strings.TrimSpace(p.rawCols(start, end))
}

func (p *pdbParser) rawCols(start, end int) string {
	if start > len(p.line) {
		return ""
	}
	if end > len(p.line) {
		end = len(p.line)
	}
	return p.line[start-1 : end]
}

func (p *pdbParser) atoi(start, end int) (int, error) {
	s := p.cols(start, end)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("columns %d-%d: %q is not an integer", start, end, s)
	}
	return n, nil
}

func (p *pdbParser) atof(start, end int) (float64, error) {
	s := p.cols(start, end)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("columns %d-%d: %q is not a number", start, end, s)
	}
	return f, nil
}
