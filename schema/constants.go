package schema

// Custom string types for type safety.
type (
	// MetricType represents the kind of recidivism metric.
	MetricType string

	// Methodology represents how instances are counted for a metric.
	Methodology string

	// ReturnType represents the reason for a reincarceration.
	ReturnType string

	// FromSupervisionType represents the supervision a person returned from.
	FromSupervisionType string

	// ViolationType represents the supervision violation behind a revocation.
	ViolationType string

	// Gender represents a person's recorded gender.
	Gender string

	// Race represents a person's recorded race.
	Race string

	// Ethnicity represents a person's recorded ethnicity.
	Ethnicity string

	// Dimension represents a configurable characteristic dimension.
	Dimension string

	// CombinationMode controls how characteristic tuples are exploded.
	CombinationMode string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string
)

// All metric types supported.
const (
	RateMetric    MetricType = "RATE"
	CountMetric   MetricType = "COUNT"
	LibertyMetric MetricType = "LIBERTY"
)

// All methodologies supported.
const (
	PersonMethodology Methodology = "PERSON"
	EventMethodology  Methodology = "EVENT"
)

// All reincarceration return types.
const (
	NewAdmissionReturn ReturnType = "NEW_ADMISSION"
	RevocationReturn   ReturnType = "REVOCATION"
)

// All supervision types a revocation can originate from.
const (
	ParoleSupervision    FromSupervisionType = "PAROLE"
	ProbationSupervision FromSupervisionType = "PROBATION"
)

// All supervision violation types.
const (
	AbscondedViolation   ViolationType = "ABSCONDED"
	EscapedViolation     ViolationType = "ESCAPED"
	FelonyViolation      ViolationType = "FELONY"
	MisdemeanorViolation ViolationType = "MISDEMEANOR"
	MunicipalViolation   ViolationType = "MUNICIPAL"
	TechnicalViolation   ViolationType = "TECHNICAL"
)

// All genders.
const (
	Female         Gender = "FEMALE"
	Male           Gender = "MALE"
	TransFemale    Gender = "TRANS_FEMALE"
	TransMale      Gender = "TRANS_MALE"
	OtherGender    Gender = "OTHER"
	ExternalGender Gender = "EXTERNAL_UNKNOWN"
)

// All races.
const (
	AmericanIndianAlaskanNative   Race = "AMERICAN_INDIAN_ALASKAN_NATIVE"
	Asian                         Race = "ASIAN"
	Black                         Race = "BLACK"
	NativeHawaiianPacificIslander Race = "NATIVE_HAWAIIAN_PACIFIC_ISLANDER"
	White                         Race = "WHITE"
	OtherRace                     Race = "OTHER"
	ExternalRace                  Race = "EXTERNAL_UNKNOWN"
)

// All ethnicities.
const (
	Hispanic          Ethnicity = "HISPANIC"
	NotHispanic       Ethnicity = "NOT_HISPANIC"
	ExternalEthnicity Ethnicity = "EXTERNAL_UNKNOWN"
)

// All configurable characteristic dimensions.
const (
	AgeBucketDim        Dimension = "age_bucket"
	GenderDim           Dimension = "gender"
	RaceDim             Dimension = "race"
	EthnicityDim        Dimension = "ethnicity"
	ReleaseFacilityDim  Dimension = "release_facility"
	StayLengthBucketDim Dimension = "stay_length_bucket"
)

// All combination modes supported.
const (
	TupleMode    CombinationMode = "tuple" // default
	PowersetMode CombinationMode = "powerset"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All run tracking backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllMetricTypes lists metric types in output order.
var AllMetricTypes = []MetricType{RateMetric, CountMetric, LibertyMetric}

// AllMethodologies lists methodologies in output order.
var AllMethodologies = []Methodology{PersonMethodology, EventMethodology}

// AllFromSupervisionTypes lists every from-supervision type in declaration order.
var AllFromSupervisionTypes = []FromSupervisionType{ParoleSupervision, ProbationSupervision}

// AllViolationTypes lists every violation type in declaration order.
var AllViolationTypes = []ViolationType{
	AbscondedViolation,
	EscapedViolation,
	FelonyViolation,
	MisdemeanorViolation,
	MunicipalViolation,
	TechnicalViolation,
}

// AllDimensions lists the configurable dimensions in tuple order.
var AllDimensions = []Dimension{
	AgeBucketDim,
	GenderDim,
	RaceDim,
	EthnicityDim,
	ReleaseFacilityDim,
	StayLengthBucketDim,
}

// DefaultFollowUpPeriods are the follow-up periods, in years, tracked for RATE metrics.
var DefaultFollowUpPeriods = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

// DefaultMetricPeriodMonths are the trailing COUNT windows, in months.
var DefaultMetricPeriodMonths = []int{1, 3, 6, 12, 36}

// ValidMetricTypes lists all valid metric types.
var ValidMetricTypes = map[MetricType]struct{}{
	RateMetric:    {},
	CountMetric:   {},
	LibertyMetric: {},
}

// ValidMethodologies lists all valid methodologies.
var ValidMethodologies = map[Methodology]struct{}{
	PersonMethodology: {},
	EventMethodology:  {},
}

// ValidReturnTypes lists all valid return types.
var ValidReturnTypes = map[ReturnType]struct{}{
	NewAdmissionReturn: {},
	RevocationReturn:   {},
}

// ValidFromSupervisionTypes lists all valid from-supervision types.
var ValidFromSupervisionTypes = map[FromSupervisionType]struct{}{
	ParoleSupervision:    {},
	ProbationSupervision: {},
}

// ValidViolationTypes lists all valid violation types.
var ValidViolationTypes = map[ViolationType]struct{}{
	AbscondedViolation:   {},
	EscapedViolation:     {},
	FelonyViolation:      {},
	MisdemeanorViolation: {},
	MunicipalViolation:   {},
	TechnicalViolation:   {},
}

// ValidGenders lists all valid genders.
var ValidGenders = map[Gender]struct{}{
	Female:         {},
	Male:           {},
	TransFemale:    {},
	TransMale:      {},
	OtherGender:    {},
	ExternalGender: {},
}

// ValidRaces lists all valid races.
var ValidRaces = map[Race]struct{}{
	AmericanIndianAlaskanNative:   {},
	Asian:                         {},
	Black:                         {},
	NativeHawaiianPacificIslander: {},
	White:                         {},
	OtherRace:                     {},
	ExternalRace:                  {},
}

// ValidEthnicities lists all valid ethnicities.
var ValidEthnicities = map[Ethnicity]struct{}{
	Hispanic:          {},
	NotHispanic:       {},
	ExternalEthnicity: {},
}

// ValidDimensions lists all valid characteristic dimensions.
var ValidDimensions = map[Dimension]struct{}{
	AgeBucketDim:        {},
	GenderDim:           {},
	RaceDim:             {},
	EthnicityDim:        {},
	ReleaseFacilityDim:  {},
	StayLengthBucketDim: {},
}

// ValidCombinationModes lists all valid combination modes.
var ValidCombinationModes = map[CombinationMode]struct{}{
	TupleMode:    {},
	PowersetMode: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid run tracking backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
