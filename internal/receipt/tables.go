package receipt

// Static token tables used by name cleaning. Loaded once, never mutated.
// These reflect one grocery chain's receipt vocabulary; the tender codes and
// discount marker that vary per retailer live in Options instead.

var brandPrefixes = map[string]struct{}{
	"KRO":    {},
	"KROGER": {},
	"SMRTWY": {},
	"XRO":    {},
	"HTGF":   {},
}

// Single-letter location/tender markers that carry no product meaning.
var noiseTokens = map[string]struct{}{
	"PC": {},
	"FO": {},
	"PL": {},
	"B":  {},
	"F":  {},
	"T":  {},
}

var abbreviations = map[string]string{
	// product descriptors
	"SHRD":    "SHREDDED",
	"SHRED":   "SHREDDED",
	"CINNAMN": "CINNAMON",
	"RLS":     "ROLLS",
	"BRST":    "BREAST",
	"SR":      "SOUR",
	"CRM":     "CREAM",
	"CHK":     "CHICKEN",
	"BF":      "BEEF",
	"GRND":    "GROUND",
	"TSTD":    "TOASTED",
	"SWTN":    "SWEETENED",
	"UNSWT":   "UNSWEETENED",
	"WHL":     "WHOLE",
	"PEPR":    "PEPPER",
	"VEG":     "VEGETABLE",
	"VEGS":    "VEGETABLES",
	"FRT":     "FRUIT",
	"FRTS":    "FRUITS",
	"YOG":     "YOGURT",
	"ORGN":    "ORGANIC",
	"SNGL":    "SINGLE",
	"SGLE":    "SINGLE",

	// units
	"PKG":  "PACKAGE",
	"PKGS": "PACKAGES",
	"CTN":  "CARTON",
	"DOZ":  "DOZEN",
	"LBS":  "POUNDS",
	"OZS":  "OUNCES",
	"GAL":  "GALLON",
	"QT":   "QUART",
	"PT":   "PINT",

	// food terms
	"CHDR": "CHEDDAR",
	"MOZZ": "MOZZARELLA",
	"PARM": "PARMESAN",
	"TOM":  "TOMATO",
	"TOMS": "TOMATOES",
	"POT":  "POTATO",
	"POTS": "POTATOES",
	"CARR": "CARROT",
	"CRRS": "CARROTS",
	"ONS":  "ONIONS",
	"BNS":  "BEANS",
	"BCON": "BACON",
	"SAUS": "SAUSAGE",
	"TKY":  "TURKEY",
	"HAM":  "HAMBURGER",

	// preparation / style
	"FRZ":  "FROZEN",
	"FRZN": "FROZEN",
	"FRS":  "FRESH",
	"FRSH": "FRESH",
	"SFT":  "SOFT",
	"HRD":  "HARD",
	"LRG":  "LARGE",
	"MED":  "MEDIUM",
	"SML":  "SMALL",

	// container / packaging
	"BTL":  "BOTTLE",
	"BTLS": "BOTTLES",
	"CAN":  "CANNED",
	"CNS":  "CANS",
	"BOX":  "BOXED",
	"BXS":  "BOXES",
	"BAG":  "BAGGED",
	"BGS":  "BAGS",

	// colors / varieties
	"WHT": "WHITE",
	"BLK": "BLACK",
	"BRN": "BROWN",
	"GRN": "GREEN",
	"YLW": "YELLOW",
	"RED": "RED",

	// qualifiers
	"LT":   "LIGHT",
	"DK":   "DARK",
	"NAT":  "NATURAL",
	"ORIG": "ORIGINAL",
	"TRAD": "TRADITIONAL",
	"REG":  "REGULAR",
	"XTR":  "EXTRA",
	"XTRA": "EXTRA",
	"SPL":  "SPECIAL",
	"PREM": "PREMIUM",
}
