package radio

import "strconv"

// Code is the raw network type reported by the platform.
// Values follow the Android TelephonyManager.NETWORK_TYPE_* numbering.
type Code int

// Known network type codes.
const (
	CodeUnknown Code = 0
	CodeGPRS    Code = 1
	CodeEDGE    Code = 2
	CodeUMTS    Code = 3
	CodeCDMA    Code = 4
	CodeEVDO0   Code = 5
	CodeEVDOA   Code = 6
	Code1xRTT   Code = 7
	CodeHSDPA   Code = 8
	CodeHSUPA   Code = 9
	CodeHSPA    Code = 10
	CodeIDEN    Code = 11
	CodeEVDOB   Code = 12
	CodeLTE     Code = 13
	CodeEHRPD   Code = 14
	CodeHSPAP   Code = 15
	CodeGSM     Code = 16
	CodeTDSCDMA Code = 17
	CodeIWLAN   Code = 18
	CodeNR      Code = 20
)

// Family is the underlying access technology family.
type Family int

// Access technology families.
const (
	FamilyUnknown Family = iota
	FamilyGSM
	FamilyWCDMA
	FamilyCDMA
	FamilyLTE
	FamilyNR
	FamilyIWLAN
)

// String returns the family name as shown to clients.
func (f Family) String() string {
	switch f {
	case FamilyGSM:
		return "GSM"
	case FamilyWCDMA:
		return "WCDMA"
	case FamilyCDMA:
		return "CDMA"
	case FamilyLTE:
		return "LTE"
	case FamilyNR:
		return "5G NR"
	case FamilyIWLAN:
		return "IWLAN"
	default:
		return "Unknown"
	}
}

// Generation is the marketing generation class of a technology.
type Generation int

// Generation classes.
const (
	GenerationUnknown Generation = iota
	Generation2G
	Generation3G
	Generation4G
	Generation5G
)

// String returns the generation label, e.g. "4G".
func (g Generation) String() string {
	switch g {
	case Generation2G:
		return "2G"
	case Generation3G:
		return "3G"
	case Generation4G:
		return "4G"
	case Generation5G:
		return "5G"
	default:
		return "Unknown"
	}
}

// Classification holds the facts derived from a Code.
type Classification struct {
	// DisplayName is the human readable technology name, e.g. "HSPA+".
	DisplayName string
	// Family is the access technology family.
	Family Family
	// Generation is the generation class.
	Generation Generation
}

//nolint:gochecknoglobals // Read-only lookup tables.
var (
	displayNames = map[Code]string{
		CodeGPRS:    "GPRS",
		CodeEDGE:    "EDGE",
		CodeUMTS:    "UMTS",
		CodeCDMA:    "CDMA",
		CodeEVDO0:   "EVDO_0",
		CodeEVDOA:   "EVDO_A",
		Code1xRTT:   "1xRTT",
		CodeHSDPA:   "HSDPA",
		CodeHSUPA:   "HSUPA",
		CodeHSPA:    "HSPA",
		CodeIDEN:    "iDEN",
		CodeEVDOB:   "EVDO_B",
		CodeLTE:     "LTE",
		CodeEHRPD:   "eHRPD",
		CodeHSPAP:   "HSPA+",
		CodeGSM:     "GSM",
		CodeTDSCDMA: "TD_SCDMA",
		CodeIWLAN:   "IWLAN",
		CodeNR:      "5G NR",
	}

	// iDEN has no family entry: it predates the families tracked here.
	families = map[Code]Family{
		CodeGPRS:    FamilyGSM,
		CodeEDGE:    FamilyGSM,
		CodeGSM:     FamilyGSM,
		CodeUMTS:    FamilyWCDMA,
		CodeHSDPA:   FamilyWCDMA,
		CodeHSUPA:   FamilyWCDMA,
		CodeHSPA:    FamilyWCDMA,
		CodeHSPAP:   FamilyWCDMA,
		CodeTDSCDMA: FamilyWCDMA,
		CodeCDMA:    FamilyCDMA,
		CodeEVDO0:   FamilyCDMA,
		CodeEVDOA:   FamilyCDMA,
		CodeEVDOB:   FamilyCDMA,
		Code1xRTT:   FamilyCDMA,
		CodeEHRPD:   FamilyCDMA,
		CodeLTE:     FamilyLTE,
		CodeIWLAN:   FamilyIWLAN,
		CodeNR:      FamilyNR,
	}

	generations = map[Code]Generation{
		CodeGPRS:    Generation2G,
		CodeEDGE:    Generation2G,
		CodeCDMA:    Generation2G,
		Code1xRTT:   Generation2G,
		CodeIDEN:    Generation2G,
		CodeGSM:     Generation2G,
		CodeUMTS:    Generation3G,
		CodeEVDO0:   Generation3G,
		CodeEVDOA:   Generation3G,
		CodeHSDPA:   Generation3G,
		CodeHSUPA:   Generation3G,
		CodeHSPA:    Generation3G,
		CodeEVDOB:   Generation3G,
		CodeEHRPD:   Generation3G,
		CodeHSPAP:   Generation3G,
		CodeTDSCDMA: Generation3G,
		CodeLTE:     Generation4G,
		CodeIWLAN:   Generation4G,
		CodeNR:      Generation5G,
	}
)

// Classify derives the display name, family and generation of a code.
// It never fails: codes missing from the tables resolve to Unknown.
func Classify(code Code) Classification {
	name, ok := displayNames[code]
	if !ok {
		name = "Unknown (" + strconv.Itoa(int(code)) + ")"
	}

	// Missing map entries yield the zero value, which is Unknown for both enums.
	return Classification{
		DisplayName: name,
		Family:      families[code],
		Generation:  generations[code],
	}
}
