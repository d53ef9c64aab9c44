// Package constants provides shared constants for the nisa-forecast application.
package constants

// YearMonthLayout is the format expected for scenario start and withdrawal
// months and is also the output month format.
const YearMonthLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// CapLimit is the lifetime contribution ceiling of the tax-exempt account in yen.
	CapLimit int64 = 18_000_000

	// TaxRate is the flat tax applied to positive monthly gains of the taxable account.
	TaxRate = 0.20315

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// RateMinPercent and RateMaxPercent bound the accepted annual rates.
	RateMinPercent = 0.0
	RateMaxPercent = 50.0
)

// Input modes
const (
	ModeSimple  = "simple"
	ModeBuilder = "builder"
	ModeDSL     = "dsl"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultStoreFile is the default location of saved scenarios
	DefaultStoreFile = "scenarios.yaml"

	// EnvPrefix prefixes environment overrides of configuration keys
	EnvPrefix = "NISA"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)
