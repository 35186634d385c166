package ocr

// Point is a pixel coordinate in the source image.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Detection is a single text fragment recognized by the detection engine:
// the text, its bounding polygon ordered top-left, top-right, bottom-right,
// bottom-left, and the recognition confidence in [0, 1].
type Detection struct {
	Text       string  `json:"text"`
	Polygon    []Point `json:"polygon"`
	Confidence float64 `json:"confidence"`
}

// ImageResult is the engine output for one image.
type ImageResult struct {
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Detections []Detection `json:"detections"`
}

// engineResponse mirrors the wire schema of the remote detection service,
// which reports detections as "regions" with per-stage confidences.
type engineResponse struct {
	Width   int `json:"width"`
	Height  int `json:"height"`
	Regions []struct {
		Polygon       []Point `json:"polygon"`
		Text          string  `json:"text"`
		DetConfidence float64 `json:"det_confidence"`
		RecConfidence float64 `json:"rec_confidence"`
	} `json:"regions"`
}

func (r *engineResponse) toImageResult() *ImageResult {
	out := &ImageResult{
		Width:      r.Width,
		Height:     r.Height,
		Detections: make([]Detection, 0, len(r.Regions)),
	}
	for _, reg := range r.Regions {
		out.Detections = append(out.Detections, Detection{
			Text:       reg.Text,
			Polygon:    reg.Polygon,
			Confidence: reg.RecConfidence,
		})
	}
	return out
}
