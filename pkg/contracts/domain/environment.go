package domain

import "time"

// EnvironmentRecord is one hydroponic sensor reading, tagged with the school
// it was recorded at and that school's target EC. Rows whose timestamp failed
// to parse never become records; numeric fields that failed to parse are
// carried as invalid Floats.
type EnvironmentRecord struct {
	Time        time.Time `json:"time"`
	Temperature Float     `json:"temperature"`
	Humidity    Float     `json:"humidity"`
	PH          Float     `json:"ph"`
	EC          Float     `json:"ec"`
	School      string    `json:"school"`
	ECGoal      float64   `json:"ec_goal"`
}

// EnvironmentSummary is the per-school aggregate over environment records.
// Means are computed over present values only; Count is the number of valid
// timestamped rows for the school.
type EnvironmentSummary struct {
	School      string  `json:"school"`
	AvgTemp     Float   `json:"avg_temp"`
	AvgHumidity Float   `json:"avg_humidity"`
	AvgPH       Float   `json:"avg_ph"`
	AvgEC       Float   `json:"avg_ec"`
	ECGoal      float64 `json:"ec_goal"`
	Count       int     `json:"count"`
}
