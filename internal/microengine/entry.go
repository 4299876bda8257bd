package microengine

//
// Measurement entries
//

import (
	"time"

	"github.com/ooni/probe-goja/internal/version"
)

// dateFormat is the data format used by measurement timestamps.
const dateFormat = "2006-01-02 15:04:05"

// measurementEntry is the envelope wrapping the test keys produced by
// a measurer for a single input.
type measurementEntry struct {
	DataFormatVersion    string  `json:"data_format_version"`
	Input                string  `json:"input,omitempty"`
	MeasurementStartTime string  `json:"measurement_start_time"`
	ReportID             string  `json:"report_id"`
	SoftwareName         string  `json:"software_name"`
	SoftwareVersion      string  `json:"software_version"`
	TestKeys             any     `json:"test_keys"`
	TestName             string  `json:"test_name"`
	TestRuntime          float64 `json:"test_runtime"`
	TestStartTime        string  `json:"test_start_time"`
	TestVersion          string  `json:"test_version"`
}

// newMeasurementEntry assembles the entry for a single measurement.
func newMeasurementEntry(mx measurer, reportID string, testStart,
	measurementStart time.Time, input string, testKeys any) *measurementEntry {
	return &measurementEntry{
		DataFormatVersion:    "0.2.0",
		Input:                input,
		MeasurementStartTime: measurementStart.UTC().Format(dateFormat),
		ReportID:             reportID,
		SoftwareName:         version.Name,
		SoftwareVersion:      version.Version,
		TestKeys:             testKeys,
		TestName:             mx.testName(),
		TestRuntime:          time.Since(measurementStart).Seconds(),
		TestStartTime:        testStart.UTC().Format(dateFormat),
		TestVersion:          mx.testVersion(),
	}
}
