package metrics

import "time"

// Generation outcomes used as the Result dimension.
const (
	ResultSuccess = "success"
	ResultNoImage = "no_image"
	ResultError   = "error"
)

// RecordGeneration emits the per-generation metrics: latency, an outcome
// count, and on success the image size.
func RecordGeneration(namespace, model, result string, elapsed time.Duration, imageBytes int) {
	r := New(namespace).
		Dimension("Result", result).
		Metric("GenerationMs", float64(elapsed.Milliseconds()), UnitMilliseconds).
		Count("GenerationResult").
		Property("model", model)
	if imageBytes > 0 {
		r.Metric("ImageBytes", float64(imageBytes), UnitBytes)
	}
	r.Flush()
}
