package winixapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/winix/devices"
	apperrors "github.com/jrsteele09/winix/internal/errors"
	"github.com/rs/zerolog/log"
)

const resultSuccess = "S100"

// ControlClient sends attribute changes to a device through the Winix
// control API. Calls are authorised by the device's own cloud pairing, not
// by the account session.
type ControlClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewControlClient(baseURL string, httpClient *http.Client) *ControlClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ControlClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type controlResponse struct {
	Headers struct {
		ResultCode    string `json:"resultCode"`
		ResultMessage string `json:"resultMessage"`
	} `json:"headers"`
}

func (c *ControlClient) SetFan(ctx context.Context, deviceID string, level devices.FanLevel) error {
	value := level.Value()
	if value == "" {
		return fmt.Errorf("unknown fan level %v", level)
	}
	return c.setAttribute(ctx, deviceID, devices.AirflowAttribute, value)
}

func (c *ControlClient) SetPower(ctx context.Context, deviceID string, state devices.PowerState) error {
	value := state.Value()
	if value == "" {
		return fmt.Errorf("unknown power state %v", state)
	}
	return c.setAttribute(ctx, deviceID, devices.PowerAttribute, value)
}

func (c *ControlClient) setAttribute(ctx context.Context, deviceID, attribute, value string) error {
	endpoint := fmt.Sprintf("%s/common/control/devices/%s/A211/%s:%s", c.baseURL, url.PathEscape(deviceID), attribute, value)
	log.Debug().Str("device_id", deviceID).Str("attribute", attribute).Str("value", value).Msg("control")

	var resp controlResponse
	if err := doJSON(ctx, c.httpClient, http.MethodGet, endpoint, nil, &resp); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrControl, err)
	}
	if code := resp.Headers.ResultCode; code != "" && code != resultSuccess {
		msg := resp.Headers.ResultMessage
		if msg == "" {
			msg = "no message"
		}
		return fmt.Errorf("%w: %s (%s)", apperrors.ErrControl, msg, code)
	}
	return nil
}
