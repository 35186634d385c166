package ocr

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReadResultFile loads a saved detection result from a JSON file. Both the
// canonical ImageResult schema and the engine's raw response schema are
// accepted, so responses captured with curl can be replayed directly.
func ReadResultFile(path string) (*ImageResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read detection file: %w", err)
	}

	var res ImageResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parse detection file %s: %w", path, err)
	}
	if len(res.Detections) > 0 {
		return &res, nil
	}

	var er engineResponse
	if err := json.Unmarshal(data, &er); err != nil {
		return nil, fmt.Errorf("parse detection file %s: %w", path, err)
	}
	return er.toImageResult(), nil
}
