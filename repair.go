package enval

import (
	"github.com/kaptinlin/jsonrepair"
)

// DetectorRepair names the lenient structured rule an Engine adds with
// WithRepair. Package-level Infer never uses it.
const DetectorRepair Name = "repair"

var repairDetector = Detector{name: DetectorRepair, fn: detectRepaired}

// detectRepaired retries JSON-delimited text that failed strict parsing
// after running it through jsonrepair, so hand-written values such as
// {port: 8080, hosts: ['a', 'b']} still come back structured.
// Only objects and arrays are accepted.
func detectRepaired(c Candidate) (Value, bool) {
	if !delimited(c.Text) {
		return Value{}, false
	}
	repaired, err := jsonrepair.JSONRepair(c.Text)
	if err != nil {
		return Value{}, false
	}
	return parseStructured(repaired)
}
