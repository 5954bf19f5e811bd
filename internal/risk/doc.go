// Package risk turns a detection log into a single privacy risk score.
//
// Finding categories are grouped into five scoring buckets (personal
// information, unique identifiers, app metadata, device description,
// sensor data), each with a fixed weight reflecting how invasive its
// leakage is. Per-bucket counts are compressed on a logarithmic scale so
// the score reflects breadth of leakage rather than raw event volume:
// the tenth email exfiltration moves the score far less than the first.
package risk
