package constants

// This is set during compilation. See scripts/build.sh
var Version = "latest"

// Claim columns, after column name normalization.
const (
	MemberID          = "member_medicaid_id"
	ClaimID           = "claimid"
	FirstName         = "member_first_name"
	LastName          = "member_last_name"
	DateOfService     = "dos_from"
	RevenueCode       = "revenue_code"
	PlaceOfService    = "place_of_service"
	TotalPaid         = "total_paid_amt"
	AttendingProvider = "attending_providerid"

	// PrimaryDiagnosis is the header primary diagnosis column. Every
	// diagnosis column has a paired version column named column+ICDVersionSuffix.
	PrimaryDiagnosis = "claim_header_diagnosis_code_primary"
	ICDVersionSuffix = "_icd_vers"
)

// Pharmacy columns.
const (
	ClaimStartDate     = "claim_start_date"
	DrugStrength       = "drug_strength"
	DrugProductName    = "drug_product_name"
	ClaimStatus        = "claim_status"
	RefillCode         = "refill_code"
	DaysSupply         = "days_supply"
	GenericProductName = "generic_product_name"
	PharmacyName       = "pharmacy_name"
	PharmacyPhone      = "pharmacy_phone_number"
	MemberAge          = "member_age_on_date_of_service"
)

// File kinds, detected from the input file name.
const (
	KindClaim    = "claim"
	KindPharmacy = "pharmacy"
	KindUnknown  = ""
)

const PaidStatus = "PAID"

// Place of service literal that maps to code 0.
const NotApplicable = "Not Applicable"

const DateLayout = "2006-01-02"
