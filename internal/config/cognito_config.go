package config

import "fmt"

// CognitoConfig describes the user pool the Winix mobile app authenticates against.
type CognitoConfig interface {
	GetCognitoRegion() string
	GetCognitoPoolID() string
	GetCognitoClientID() string
	GetCognitoClientSecret() string
	GetCognitoEndpoint() string
	GetCognitoIssuer() string
}

type Cognito struct{}

var _ CognitoConfig = Cognito{}

func (Cognito) GetCognitoRegion() string {
	return GetEnv("WINIX_COGNITO_REGION", "us-east-1")
}

func (Cognito) GetCognitoPoolID() string {
	return GetEnv("WINIX_COGNITO_POOL_ID", "us-east-1_Ofd50EosD")
}

func (Cognito) GetCognitoClientID() string {
	return GetEnv("WINIX_COGNITO_CLIENT_ID", "14og512b9u20b8vrdm55d8empi")
}

func (Cognito) GetCognitoClientSecret() string {
	return GetEnv("WINIX_COGNITO_CLIENT_SECRET", "k554d4pvgf2n0chbhgtmbe4q0ul4a9flp3pcl6a47ch6rripvvr")
}

// GetCognitoEndpoint overrides the regional endpoint. Empty means use the SDK default.
func (Cognito) GetCognitoEndpoint() string {
	return GetEnv("WINIX_COGNITO_ENDPOINT", "")
}

// GetCognitoIssuer is the "iss" claim Cognito puts on tokens minted by the pool.
func (c Cognito) GetCognitoIssuer() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.GetCognitoRegion(), c.GetCognitoPoolID())
}
