package codebook

// Code lists behind every classification rule. The tables are fixed for a
// release and are not configurable at runtime.

// Condition names a comorbidity tracked at the member level. The value is
// also the member table column name.
type Condition string

const (
	AllergicRhinitis      Condition = "allergic_rhinitis"
	Obesity               Condition = "obesity"
	ObstructiveSleepApnea Condition = "obs_sleep_apnea"
	GERD                  Condition = "gerd"
)

// Conditions lists the comorbidities in output column order.
var Conditions = []Condition{AllergicRhinitis, Obesity, ObstructiveSleepApnea, GERD}

// ComorbidityRule matches a normalized diagnosis. ICD-9 codes match when the
// version is 9 and ICD9Min <= code <= ICD9Max (string order); an exact code
// sets both bounds to the same value. ICD-10 codes match by membership.
type ComorbidityRule struct {
	Condition Condition
	ICD9Min   string
	ICD9Max   string
	ICD10     map[string]struct{}
}

// CodeTables carries every code set a classifier consults.
type CodeTables struct {
	AsthmaICD10 map[string]struct{}
	// Asthma ICD-9 codes match on this category prefix only.
	AsthmaICD9Prefix string

	InpatientRevenue  map[int]struct{}
	EDRevenue         map[int]struct{}
	OutpatientRevenue map[int]struct{}

	InpatientPOS  map[int]struct{}
	EDPOS         map[int]struct{}
	OutpatientPOS map[int]struct{}

	Comorbidities []ComorbidityRule

	Controllers       []string
	RelieverFragments []string
}

const (
	AsthmaICD9MinThreshold = "493"
	// AsthmaICD9MaxThreshold bounds the ICD-9 asthma category but is not
	// consulted by classification.
	AsthmaICD9MaxThreshold = "494"
)

var asthmaICD10Codes = []string{
	"J45.20", "J45.21", "J45.22",
	"J45.30", "J45.31", "J45.32",
	"J45.40", "J45.41", "J45.42",
	"J45.50", "J45.51", "J45.52",
	"J45.900", "J45.901", "J45.902",
	"J45.909", "J82.33",
}

var (
	inpatientRevenueCodes = concat(between(100, 219), between(720, 724), []int{729, 987})
	edRevenueCodes        = []int{450, 451, 452, 456, 459, 981}
	outpatientRevenueCode = concat(between(510, 523), between(526, 529), between(570, 572),
		between(579, 583), []int{589, 590, 599, 982, 983})

	inpatientPOSCodes  = []int{6, 8, 21, 25, 26, 31, 32, 34, 51, 55, 61}
	edPOSCodes         = []int{23, 25, 26, 41, 42}
	outpatientPOSCodes = concat(between(2, 19), []int{22, 24, 25, 26, 32, 33, 34, 49, 50,
		52, 53, 54, 56, 57, 58, 60, 62, 65, 71, 72})
	// VirtualPOSCodes are telehealth settings. No rule uses them yet.
	VirtualPOSCodes = []int{2, 10}
)

var relieverFragments = []string{"LEVALBUTEROL", "ALBUTEROL", "METAPROTERENOL", "PIRBUTEROL"}

// Default returns the production code tables.
func Default() CodeTables {
	return CodeTables{
		AsthmaICD10:      stringSet(asthmaICD10Codes),
		AsthmaICD9Prefix: AsthmaICD9MinThreshold,

		InpatientRevenue:  intSet(inpatientRevenueCodes),
		EDRevenue:         intSet(edRevenueCodes),
		OutpatientRevenue: intSet(outpatientRevenueCode),

		InpatientPOS:  intSet(inpatientPOSCodes),
		EDPOS:         intSet(edPOSCodes),
		OutpatientPOS: intSet(outpatientPOSCodes),

		Comorbidities: []ComorbidityRule{
			{Condition: AllergicRhinitis, ICD9Min: "477.0", ICD9Max: "477.9",
				ICD10: stringSet([]string{"J30", "J30.1", "J30.2", "J30.81", "J30.89", "J30.9"})},
			{Condition: Obesity, ICD9Min: "278.0", ICD9Max: "278.03",
				ICD10: stringSet([]string{"E66.01", "E66.09", "E66.1", "E66.2", "E66.3", "E66.8", "E66.9"})},
			{Condition: ObstructiveSleepApnea, ICD9Min: "327.23", ICD9Max: "327.23",
				ICD10: stringSet([]string{"G47.33"})},
			{Condition: GERD, ICD9Min: "530.81", ICD9Max: "530.81",
				ICD10: stringSet([]string{"K21.0", "K21.9"})},
		},

		Controllers:       append([]string(nil), Controllers...),
		RelieverFragments: append([]string(nil), relieverFragments...),
	}
}

// PlaceOfServiceName returns the CMS name of a place of service code, or ""
// for an unknown code.
func PlaceOfServiceName(code int) string {
	return placeOfServiceNames[code]
}

func between(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return out
}

func concat(parts ...[]int) []int {
	var out []int
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func intSet(codes []int) map[int]struct{} {
	m := make(map[int]struct{}, len(codes))
	for _, c := range codes {
		m[c] = struct{}{}
	}
	return m
}

func stringSet(codes []string) map[string]struct{} {
	m := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		m[c] = struct{}{}
	}
	return m
}
