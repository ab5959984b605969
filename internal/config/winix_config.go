package config

type WinixConfig interface {
	GetMobileAPIURL() string
	GetControlAPIURL() string
}

type Winix struct{}

var _ WinixConfig = Winix{}

// GetMobileAPIURL is the base of the account and device directory endpoints.
func (Winix) GetMobileAPIURL() string {
	return GetEnv("WINIX_MOBILE_URL", "https://us.mobile.winix-iot.com")
}

// GetControlAPIURL is the base of the device attribute control endpoints.
func (Winix) GetControlAPIURL() string {
	return GetEnv("WINIX_CONTROL_URL", "https://us.api.winix-iot.com")
}
