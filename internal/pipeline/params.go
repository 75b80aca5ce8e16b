package pipeline

import (
	"strconv"

	"github.com/indra622/world-of-asr/internal/models"
	"github.com/indra622/world-of-asr/internal/recognizer"
)

// rawParamsFromStringMap widens a Job's persisted string-valued parameter
// map into recognizer.RawParams, parsing numeric/boolean fields so
// NormalizeParams's sentinel rule applies the same way it would to a
// natively-typed JSON body. Unparseable values are passed through as
// strings (recognizer.asFloat/asInt simply won't match them, which is
// equivalent to treating them as absent).
func rawParamsFromStringMap(params models.StringMap) recognizer.RawParams {
	raw := make(recognizer.RawParams, len(params))
	for k, v := range params {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			raw[k] = f
			continue
		}
		if b, err := strconv.ParseBool(v); err == nil {
			raw[k] = b
			continue
		}
		raw[k] = v
	}
	return raw
}
