package radio

// DataState is the Android data connection state (TelephonyManager.DATA_*).
type DataState int

// Data connection states.
const (
	DataStateUnknown      DataState = -1
	DataStateDisconnected DataState = 0
	DataStateConnecting   DataState = 1
	DataStateConnected    DataState = 2
	DataStateSuspended    DataState = 3
)

//nolint:gochecknoglobals // Read-only lookup table.
var dataStateNames = map[DataState]string{
	DataStateDisconnected: "Disconnected",
	DataStateConnecting:   "Connecting",
	DataStateConnected:    "Connected",
	DataStateSuspended:    "Suspended",
}

// String returns the state label, "Unknown" for unrecognised values.
func (s DataState) String() string {
	if name, ok := dataStateNames[s]; ok {
		return name
	}

	return "Unknown"
}

// DataActivity is the Android data traffic direction (TelephonyManager.DATA_ACTIVITY_*).
type DataActivity int

// Data activity values.
const (
	DataActivityUnknown DataActivity = -1
	DataActivityNone    DataActivity = 0
	DataActivityIn      DataActivity = 1
	DataActivityOut     DataActivity = 2
	DataActivityInOut   DataActivity = 3
	DataActivityDormant DataActivity = 4
)

//nolint:gochecknoglobals // Read-only lookup table.
var dataActivityNames = map[DataActivity]string{
	DataActivityNone:    "None",
	DataActivityIn:      "In",
	DataActivityOut:     "Out",
	DataActivityInOut:   "In/Out",
	DataActivityDormant: "Dormant",
}

// String returns the activity label, "Unknown" for unrecognised values.
func (a DataActivity) String() string {
	if name, ok := dataActivityNames[a]; ok {
		return name
	}

	return "Unknown"
}

// Snapshot is the telephony state of the handset at one point in time.
type Snapshot struct {
	// OperatorName is the registered network operator, e.g. "Telkomsel".
	OperatorName string
	// MCC is the mobile country code.
	MCC string
	// MNC is the mobile network code.
	MNC string
	// IsRoaming reports whether the device is roaming.
	IsRoaming bool
	// DataState is the data connection state.
	DataState DataState
	// DataActivity is the data traffic direction.
	DataActivity DataActivity
	// NetworkType is the raw data network code.
	NetworkType Code
	// CellID identifies the serving cell; empty when unavailable.
	CellID string
	// AreaCode is the tracking or location area code; empty when unavailable.
	AreaCode string
	// SignalStrength is the serving cell signal in dBm; nil when unavailable.
	SignalStrength *int
}

// Connected reports whether mobile data is connected.
func (s *Snapshot) Connected() bool {
	return s != nil && s.DataState == DataStateConnected
}

// SplitOperator splits a numeric operator ("51010") into MCC and MNC.
// Values shorter than three digits are returned as MCC only.
func SplitOperator(numeric string) (mcc, mnc string) {
	if len(numeric) <= 3 {
		return numeric, ""
	}

	return numeric[:3], numeric[3:]
}
