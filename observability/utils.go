package observability

import "context"

func AddUploadMetric(ctx context.Context, metric ...map[string]interface{}) {
	sender, ok := senderFromContext(ctx)
	if !ok {
		return
	}

	sender.AddDistinctMetrics(uploadErrorMetricType, metric...)
}

func AddStateMetric(ctx context.Context, metric ...map[string]interface{}) {
	sender, ok := senderFromContext(ctx)
	if !ok {
		return
	}

	sender.AddDistinctMetrics(stateErrorMetricType, metric...)
}
