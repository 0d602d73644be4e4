package models

// Action is one entry of the action catalog: a named measurement
// definition performed on a unit under test. The catalog's sequence
// number fixes the output column order, so actions must always be
// carried in the order the catalog query returned them.
type Action struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsRanged bool   `json:"is_ranged"` // ranged actions emit ".min"/".max" columns alongside the value
}

// RawRecord is one manufacturing unit under test as read from the
// source. ProcessID is a join key for the measurement query only and
// is never emitted to output.
type RawRecord struct {
	ID        int64       `json:"id"`
	CreatedAt interface{} `json:"created_at"` // time.Time or ISO-8601 string, depending on the source driver
	ProcessID *int64      `json:"process_id,omitempty"`
	Number    string      `json:"number"`
	Status    string      `json:"status"` // raw encoded status code from the source
	HousingNo string      `json:"housing_no"`
	PcbNo     string      `json:"pcb_no"`
	ArmNo     string      `json:"arm_no"`
}

// Measurement is one performed action's result for a given process.
// Min and Max are only meaningful when the joined Action is ranged.
type Measurement struct {
	Action string      `json:"action"`
	Min    interface{} `json:"min"`
	Max    interface{} `json:"max"`
	Value  interface{} `json:"value"`
}
