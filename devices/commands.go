package devices

import (
	"fmt"
	"strings"
)

// Attribute codes understood by the Winix control API.
const (
	PowerAttribute   = "A02"
	AirflowAttribute = "A04"
)

// FanLevel is an airflow speed.
type FanLevel int

const (
	FanLow FanLevel = iota
	FanMedium
	FanHigh
	FanTurbo
)

var fanLevelNames = [...]string{
	FanLow:    "low",
	FanMedium: "medium",
	FanHigh:   "high",
	FanTurbo:  "turbo",
}

var fanLevelValues = [...]string{
	FanLow:    "01",
	FanMedium: "02",
	FanHigh:   "03",
	FanTurbo:  "05",
}

// FanLevels lists every level in ascending order.
func FanLevels() []FanLevel {
	return []FanLevel{FanLow, FanMedium, FanHigh, FanTurbo}
}

func (l FanLevel) valid() bool {
	return l >= FanLow && l <= FanTurbo
}

func (l FanLevel) String() string {
	if !l.valid() {
		return fmt.Sprintf("FanLevel(%d)", int(l))
	}
	return fanLevelNames[l]
}

// Value returns the airflow attribute value sent to the control API.
func (l FanLevel) Value() string {
	if !l.valid() {
		return ""
	}
	return fanLevelValues[l]
}

// ParseFanLevel maps a level name (case-insensitive) to a FanLevel.
func ParseFanLevel(s string) (FanLevel, error) {
	for _, l := range FanLevels() {
		if strings.EqualFold(s, fanLevelNames[l]) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("invalid fan level %q (choose from %s)", s, strings.Join(fanLevelNames[:], ", "))
}

// PowerState is the on/off state of a device.
type PowerState int

const (
	PowerOff PowerState = iota
	PowerOn
)

func (p PowerState) String() string {
	switch p {
	case PowerOn:
		return "on"
	case PowerOff:
		return "off"
	}
	return fmt.Sprintf("PowerState(%d)", int(p))
}

// Value returns the power attribute value sent to the control API.
func (p PowerState) Value() string {
	switch p {
	case PowerOn:
		return "1"
	case PowerOff:
		return "0"
	}
	return ""
}

// ParsePowerState maps "on" or "off" (case-insensitive) to a PowerState.
func ParsePowerState(s string) (PowerState, error) {
	switch strings.ToLower(s) {
	case "on":
		return PowerOn, nil
	case "off":
		return PowerOff, nil
	}
	return 0, fmt.Errorf("invalid power state %q (choose from on, off)", s)
}
