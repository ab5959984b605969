package devices

// Record identifies one paired purifier. The first record of a device list is
// the default target for control commands.
type Record struct {
	ID           string `json:"id"`
	Mac          string `json:"mac"`
	Alias        string `json:"alias"`
	LocationCode string `json:"location_code"`
}
