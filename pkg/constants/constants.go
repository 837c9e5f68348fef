// Package constants provides shared constants for the rate-impact application.
package constants

// Rate conversion constants
const (
	// BasisPointsPerUnit converts a basis point count into a fractional rate.
	BasisPointsPerUnit = 10000

	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// PercentChangeFloor is the smallest baseline used when computing a percent
	// change, so an empty portfolio reports 0% instead of dividing by zero.
	PercentChangeFloor = 1.0
)

// Canned scenario shocks in basis points.
const (
	ConservativeBps = -25
	ModerateBps     = -50
	AggressiveBps   = -100
)

// Model coefficients shared by the instrument models.
const (
	// MYGASensitivity is the share of a rate shock a MYGA reprices into.
	MYGASensitivity = 0.6

	// FIAReferenceIndexReturn translates a participation multiple into a credit rate.
	FIAReferenceIndexReturn = 0.04

	// FIACapSensitivity is the share of a rate shock applied to the FIA cap.
	FIACapSensitivity = 0.3

	// FIAParticipationStep is the participation shift applied at any nonzero shock.
	FIAParticipationStep = 0.2

	// SPIAPayoutSensitivity is the payout factor change per unit of rate shock.
	SPIAPayoutSensitivity = 0.8

	// HELOCPrimeSpread is the assumed spread of prime over the policy rate.
	HELOCPrimeSpread = 0.03
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatPDF is the PDF report output format
	OutputFormatPDF = "pdf"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultPDFOutputFile is where the pdf output format writes when no file is given
	DefaultPDFOutputFile = "rate-impact.pdf"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024
)

// Lead hand-off defaults
const (
	// DefaultBookingURL is the call-to-action booking page.
	DefaultBookingURL = "https://www.advisorrescue.net/appointment"

	// DefaultUTMSource, DefaultUTMMedium and DefaultUTMCampaign tag leads that
	// arrive without attribution.
	DefaultUTMSource   = "fedcalc"
	DefaultUTMMedium   = "app"
	DefaultUTMCampaign = "guaranteed-rates"

	// DefaultProduct is the product of interest used by the booking CTA.
	DefaultProduct = "Guaranteed Rates"

	// LeadSource is the CRM lead source label.
	LeadSource = "Fed Rate Calculator"

	// DefaultLastName is used when a lead name has no usable last token.
	DefaultLastName = "Website Lead"

	// DefaultFromEmail is the notification sender when none is configured.
	DefaultFromEmail = "leads@planliferight.com"

	// NotificationSubject is the subject line of the team notification email.
	NotificationSubject = "New Fed Rate Calculator Lead"

	// DefaultZohoDC is the Zoho data center suffix.
	DefaultZohoDC = "com"
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// DefaultRegion is the preset region used when none is requested.
	DefaultRegion = "US"
)
