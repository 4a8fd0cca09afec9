package config

// Application constants
const (
	AppName    = "coastereda"
	AppVersion = "1.0.0"

	// EnvPrefix is prepended to every environment variable, for example
	// COASTER_PIPELINE_INPUT_PATH.
	EnvPrefix = "COASTER"

	DefaultOutputDir     = "output"
	DefaultHistogramBins = 20
	DefaultTopN          = 10
	DefaultReportTitle   = "EDA Report"
)

// All-null imputation policies
const (
	AllNullFail  = "fail"
	AllNullLeave = "leave"
)

// Output file names, relative to the output directory
const (
	CleanedCSVName     = "cleaned.csv"
	GroupedCSVName     = "grouped_by_coaster.csv"
	KeepFirstCSVName   = "keep_first.csv"
	KeepLastCSVName    = "keep_last.csv"
	SpeedByTypeCSVName = "speed_by_type.csv"
	AvgByDecadeCSVName = "avg_by_decade.csv"
	ChartsName         = "charts.xlsx"
	ProfileName        = "EDA_Report.html"
	MetricsName        = "metrics.prom"
	TraceName          = "trace.json"
	LogsDirName        = "logs"
	LogFileName        = "coastereda.log"
)
