// Package observability forwards draft synchronization failure metrics to a Sender taken from the context.
package observability

var uploadErrorMetricType int
var stateErrorMetricType int

type Sender interface {
	AddMetrics(metrics ...map[string]interface{})
	AddDistinctMetrics(errType interface{}, metrics ...map[string]interface{})
}

// SetupMetricTypes sets the distinct error types the metrics are grouped by.
func SetupMetricTypes(uploadErrorType, stateErrorType int) {
	uploadErrorMetricType = uploadErrorType
	stateErrorMetricType = stateErrorType
}
