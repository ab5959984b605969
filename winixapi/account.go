package winixapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/winix/devices"
	"github.com/jrsteele09/winix/sessions"
	"github.com/rs/zerolog/log"
)

const (
	osType     = "android"
	osVersion  = "29"
	mobileLang = "en"
)

// AccountClient talks to the Winix mobile API: account registration and the
// device directory.
type AccountClient struct {
	baseURL      string
	clientSecret string
	httpClient   *http.Client
}

// NewAccountClient creates an AccountClient. clientSecret is the Cognito app
// client secret, which the mobile API expects alongside the access token.
func NewAccountClient(baseURL, clientSecret string, httpClient *http.Client) *AccountClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &AccountClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientSecret: clientSecret,
		httpClient:   httpClient,
	}
}

type registerUserRequest struct {
	CognitoClientSecretKey string `json:"cognitoClientSecretKey"`
	AccessToken            string `json:"accessToken"`
	UUID                   string `json:"uuid"`
	Email                  string `json:"email"`
	OSType                 string `json:"osType"`
	OSVersion              string `json:"osVersion"`
	MobileLang             string `json:"mobileLang"`
}

type checkAccessTokenRequest struct {
	CognitoClientSecretKey string `json:"cognitoClientSecretKey"`
	AccessToken            string `json:"accessToken"`
	UUID                   string `json:"uuid"`
	OSVersion              string `json:"osVersion"`
	MobileLang             string `json:"mobileLang"`
}

type deviceInfoListRequest struct {
	AccessToken string `json:"accessToken"`
	UUID        string `json:"uuid"`
}

type deviceInfo struct {
	DeviceID      string `json:"deviceId"`
	Mac           string `json:"mac"`
	DeviceAlias   string `json:"deviceAlias"`
	DeviceLocCode string `json:"deviceLocCode"`
}

type deviceInfoListResponse struct {
	DeviceInfoList []deviceInfo `json:"deviceInfoList"`
}

// RegisterUser associates this client with the account behind session.
func (c *AccountClient) RegisterUser(ctx context.Context, session *sessions.Session, email string) error {
	log.Debug().Str("user_id", session.UserID).Msg("registering client")
	err := doJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/registerUser", registerUserRequest{
		CognitoClientSecretKey: c.clientSecret,
		AccessToken:            session.AccessToken,
		UUID:                   ClientUUID(session.UserID),
		Email:                  email,
		OSType:                 osType,
		OSVersion:              osVersion,
		MobileLang:             mobileLang,
	}, nil)
	if err != nil {
		return fmt.Errorf("registerUser: %w", err)
	}
	return nil
}

// CheckAccessToken asks the mobile API to accept the session's access token.
func (c *AccountClient) CheckAccessToken(ctx context.Context, session *sessions.Session) error {
	log.Debug().Str("user_id", session.UserID).Msg("checking access token")
	err := doJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/checkAccessToken", checkAccessTokenRequest{
		CognitoClientSecretKey: c.clientSecret,
		AccessToken:            session.AccessToken,
		UUID:                   ClientUUID(session.UserID),
		OSVersion:              osVersion,
		MobileLang:             mobileLang,
	}, nil)
	if err != nil {
		return fmt.Errorf("checkAccessToken: %w", err)
	}
	return nil
}

// ListDevices returns the account's paired devices in the order the API lists them.
func (c *AccountClient) ListDevices(ctx context.Context, session *sessions.Session) ([]devices.Record, error) {
	var resp deviceInfoListResponse
	err := doJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/getDeviceInfoList", deviceInfoListRequest{
		AccessToken: session.AccessToken,
		UUID:        ClientUUID(session.UserID),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("getDeviceInfoList: %w", err)
	}

	records := make([]devices.Record, 0, len(resp.DeviceInfoList))
	for _, d := range resp.DeviceInfoList {
		if d.DeviceID == "" {
			log.Warn().Str("mac", d.Mac).Msg("skipping device without id")
			continue
		}
		records = append(records, devices.Record{
			ID:           d.DeviceID,
			Mac:          d.Mac,
			Alias:        d.DeviceAlias,
			LocationCode: d.DeviceLocCode,
		})
	}
	log.Debug().Int("count", len(records)).Msg("listed devices")
	return records, nil
}
