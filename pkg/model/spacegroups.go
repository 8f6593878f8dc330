package model

// spaceGroupOps lists the general positions of the space groups most common
// among deposited macromolecular crystal structures, keyed by the symbol with
// spaces removed.
var spaceGroupOps = map[string][]string{
	"P1":  {"x,y,z"},
	"P2":  {"x,y,z", "-x,y,-z"},
	"P21": {"x,y,z", "-x,y+1/2,-z"},
	"C2": {
		"x,y,z", "-x,y,-z",
		"x+1/2,y+1/2,z", "-x+1/2,y+1/2,-z",
	},
	"P222":   {"x,y,z", "-x,-y,z", "-x,y,-z", "x,-y,-z"},
	"P2221":  {"x,y,z", "-x,-y,z+1/2", "-x,y,-z+1/2", "x,-y,-z"},
	"P21212": {"x,y,z", "-x,-y,z", "-x+1/2,y+1/2,-z", "x+1/2,-y+1/2,-z"},
	"P212121": {
		"x,y,z", "-x+1/2,-y,z+1/2",
		"-x,y+1/2,-z+1/2", "x+1/2,-y+1/2,-z",
	},
	"C2221": {
		"x,y,z", "-x,-y,z+1/2", "-x,y,-z+1/2", "x,-y,-z",
		"x+1/2,y+1/2,z", "-x+1/2,-y+1/2,z+1/2", "-x+1/2,y+1/2,-z+1/2", "x+1/2,-y+1/2,-z",
	},
	"I222": {
		"x,y,z", "-x,-y,z", "-x,y,-z", "x,-y,-z",
		"x+1/2,y+1/2,z+1/2", "-x+1/2,-y+1/2,z+1/2", "-x+1/2,y+1/2,-z+1/2", "x+1/2,-y+1/2,-z+1/2",
	},
	"P41212": {
		"x,y,z", "-x,-y,z+1/2", "-y+1/2,x+1/2,z+1/4", "y+1/2,-x+1/2,z+3/4",
		"-x+1/2,y+1/2,-z+1/4", "x+1/2,-y+1/2,-z+3/4", "y,x,-z", "-y,-x,-z+1/2",
	},
	"P43212": {
		"x,y,z", "-x,-y,z+1/2", "-y+1/2,x+1/2,z+3/4", "y+1/2,-x+1/2,z+1/4",
		"-x+1/2,y+1/2,-z+3/4", "x+1/2,-y+1/2,-z+1/4", "y,x,-z", "-y,-x,-z+1/2",
	},
	"P3121": {
		"x,y,z", "-y,x-y,z+1/3", "-x+y,-x,z+2/3",
		"y,x,-z", "x-y,-y,-z+2/3", "-x,-x+y,-z+1/3",
	},
	"P3221": {
		"x,y,z", "-y,x-y,z+2/3", "-x+y,-x,z+1/3",
		"y,x,-z", "x-y,-y,-z+1/3", "-x,-x+y,-z+2/3",
	},
	"P6122": {
		"x,y,z", "-y,x-y,z+1/3", "-x+y,-x,z+2/3", "-x,-y,z+1/2", "y,-x+y,z+5/6", "x-y,x,z+1/6",
		"y,x,-z+1/3", "x-y,-y,-z", "-x,-x+y,-z+2/3", "-y,-x,-z+5/6", "-x+y,y,-z+1/2", "x,x-y,-z+1/6",
	},
	"P6522": {
		"x,y,z", "-y,x-y,z+2/3", "-x+y,-x,z+1/3", "-x,-y,z+1/2", "y,-x+y,z+1/6", "x-y,x,z+5/6",
		"y,x,-z+2/3", "x-y,-y,-z", "-x,-x+y,-z+1/3", "-y,-x,-z+1/6", "-x+y,y,-z+1/2", "x,x-y,-z+5/6",
	},
	"H3": {
		"x,y,z", "-y,x-y,z", "-x+y,-x,z",
		"x+2/3,y+1/3,z+1/3", "-y+2/3,x-y+1/3,z+1/3", "-x+y+2/3,-x+1/3,z+1/3",
		"x+1/3,y+2/3,z+2/3", "-y+1/3,x-y+2/3,z+2/3", "-x+y+1/3,-x+2/3,z+2/3",
	},
	"I4": {
		"x,y,z", "-x,-y,z", "-y,x,z", "y,-x,z",
		"x+1/2,y+1/2,z+1/2", "-x+1/2,-y+1/2,z+1/2", "-y+1/2,x+1/2,z+1/2", "y+1/2,-x+1/2,z+1/2",
	},
}

// spaceGroupAliases maps full Hermann-Mauguin symbols onto the short keys above.
var spaceGroupAliases = map[string]string{
	"P121":  "P2",
	"P1211": "P21",
	"C121":  "C2",
	"R3":    "H3",
}
