// Package config provides centralized configuration management for owidreport.
// It handles loading configuration from multiple sources, validation, and
// path resolution for the data, reports and logs directories.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file (owidreport.yaml or the -config flag)
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern OWID_<SECTION>_<FIELD>:
//
//	OWID_DATA_SOURCE=owid-covid-data.csv
//	OWID_DATA_COUNTRIES="Kenya,United States,India"
//	OWID_DATA_INTERPOLATION_SCOPE=entity
//	OWID_OUTPUT_DIR=out
//	OWID_LOGGING_LEVEL=debug
//	OWID_SERVER_PORT=8080
//
// The defaults describe the stock report: three countries, required
// fields date/total_cases/total_deaths, and the five cumulative and daily
// numeric columns interpolated.
//
// Validation uses go-playground/validator struct tags; see the validation
// package for the dataset-specific "column" and "numericcolumn" rules.
package config
