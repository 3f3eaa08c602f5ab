package config

import "time"

// Application constants - hardcoded values for the RetailPulse system
const (
	// Application Info
	AppName    = "RetailPulse"
	AppVersion = "1.0.0"

	// Upload Handling
	DefaultMaxUploadSize = 50 * 1024 * 1024 // 50MB
	UploadMemoryBuffer   = 10 * 1024 * 1024 // multipart in-memory threshold

	// Accepted upload extensions (lowercase, with dot)
	ExtensionCSV  = ".csv"
	ExtensionXLSX = ".xlsx"
	ExtensionXLS  = ".xls"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultHTTPTimeout = 60 * time.Second

	// File Paths (relative to working directory)
	DefaultDataDir = "data"
	DefaultLogsDir = "logs"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Sample Data Generation
	SampleSeed        = 42
	SampleRowsDefault = 5000
	SampleFilename    = "sample_retail_data.csv"

	// KPI Ranking Sizes (API response shape, not tunable at runtime)
	TopCustomersCount     = 10
	TopProductsCount      = 10
	TopCountriesCount     = 5
	TopPerformerProducts  = 5
	TopPerformerCustomers = 5
	TopPerformerCountries = 3
)
