package config

// Application constants
const (
	AppName    = "OWID COVID-19 Report"
	AppVersion = "1.0.0"
	Executable = "owidreport"

	// Default log file name inside Paths.LogsDir
	DefaultLogFile = "owidreport.log"

	// Dataset download location, fetched manually
	DatasetURL = "https://covid.ourworldindata.org/data/owid-covid-data.csv"
)

// Output file names
const (
	ChartTotalCases        = "total_cases.png"
	ChartTotalDeaths       = "total_deaths.png"
	ChartNewCases          = "new_cases.png"
	ChartDeathRate         = "death_rate.png"
	ChartTotalVaccinations = "total_vaccinations.png"
	ChartChoroplethHTML    = "choropleth_total_cases.html"
	ChartChoroplethPNG     = "choropleth_total_cases.png"

	ExportCleanedCSV  = "cleaned_data.csv"
	ExportSnapshotCSV = "latest_snapshot.csv"
	ExportSummaryCSV  = "entity_summary.csv"
	ExportSummaryJSON = "entity_summary.json"
	ExportWorkbook    = "covid_report.xlsx"
)
