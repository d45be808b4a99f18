package metrics

import "time"

const schemaName = "draftsync_errors_total"
const schemaVersion = 1

func generateFailureMetric(errorType string) map[string]interface{} {
	return map[string]interface{}{
		"Name":      schemaName,
		"Version":   schemaVersion,
		"Timestamp": time.Now().Unix(),
		"Data": map[string]interface{}{
			"Value": 1,
			"Labels": map[string]string{
				"errorType": errorType,
			},
		},
	}
}

func GenerateFailedToCreateDraftMetric() map[string]interface{} {
	return generateFailureMetric("failedCreateDraft")
}

func GenerateFailedToUpdateDraftMetric() map[string]interface{} {
	return generateFailureMetric("failedUpdateDraft")
}

func GenerateFailedToUploadAttachmentsMetric() map[string]interface{} {
	return generateFailureMetric("failedUploadAttachments")
}

func GenerateFailedToUpdateDraftStateMetric() map[string]interface{} {
	return generateFailureMetric("failedUpdateDraftState")
}

func GenerateFailedToMoveDraftContentMetric() map[string]interface{} {
	return generateFailureMetric("failedMoveDraftContent")
}

func GenerateFailedToStoreDraftMetric() map[string]interface{} {
	return generateFailureMetric("failedStoreDraft")
}

func GenerateAllMetrics() []map[string]interface{} {
	var metrics []map[string]interface{}
	metrics = append(metrics,
		GenerateFailedToCreateDraftMetric(),
		GenerateFailedToUpdateDraftMetric(),
		GenerateFailedToUploadAttachmentsMetric(),
		GenerateFailedToUpdateDraftStateMetric(),
		GenerateFailedToMoveDraftContentMetric(),
		GenerateFailedToStoreDraftMetric(),
	)

	return metrics
}
