package cognito

import (
	"context"
	"crypto/rand"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	awssession "github.com/aws/aws-sdk-go/aws/session"
	cip "github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/winix/internal/config"
	apperrors "github.com/jrsteele09/winix/internal/errors"
	"github.com/jrsteele09/winix/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// IdentityProvider is the subset of the Cognito Identity Provider API the
// client uses. *cognitoidentityprovider.CognitoIdentityProvider satisfies it.
type IdentityProvider interface {
	InitiateAuthWithContext(ctx aws.Context, input *cip.InitiateAuthInput, opts ...request.Option) (*cip.InitiateAuthOutput, error)
	RespondToAuthChallengeWithContext(ctx aws.Context, input *cip.RespondToAuthChallengeInput, opts ...request.Option) (*cip.RespondToAuthChallengeOutput, error)
}

// Client logs in to and refreshes tokens from the Winix Cognito user pool.
type Client struct {
	idp          IdentityProvider
	poolID       string
	clientID     string
	clientSecret string
	issuer       string
	keySet       oidc.KeySet
	httpClient   *http.Client
	random       io.Reader
	nowTime      func() time.Time
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithIdentityProvider replaces the AWS SDK service client.
func WithIdentityProvider(idp IdentityProvider) ClientOption {
	return func(c *Client) {
		c.idp = idp
	}
}

// WithKeySet sets the keys ID tokens are verified against. Defaults to the
// pool's published JWKS.
func WithKeySet(keySet oidc.KeySet) ClientOption {
	return func(c *Client) {
		c.keySet = keySet
	}
}

// WithHTTPClient sets the HTTP client used for Cognito and JWKS requests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRandom sets the source of the SRP private value (primarily for testing).
func WithRandom(r io.Reader) ClientOption {
	return func(c *Client) {
		c.random = r
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ClientOption {
	return func(c *Client) {
		c.nowTime = nowFunc
	}
}

// New creates a Client for the pool described by cfg.
func New(cfg config.CognitoConfig, options ...ClientOption) (*Client, error) {
	c := &Client{
		poolID:       cfg.GetCognitoPoolID(),
		clientID:     cfg.GetCognitoClientID(),
		clientSecret: cfg.GetCognitoClientSecret(),
		issuer:       cfg.GetCognitoIssuer(),
		httpClient:   http.DefaultClient,
		random:       rand.Reader,
		nowTime:      time.Now,
	}
	for _, opt := range options {
		opt(c)
	}

	if c.poolID == "" || c.clientID == "" {
		return nil, errors.New("[cognito.New] pool id and client id are required")
	}

	if c.idp == nil {
		awsConfig := &aws.Config{
			Region:      aws.String(cfg.GetCognitoRegion()),
			Credentials: credentials.AnonymousCredentials,
			HTTPClient:  c.httpClient,
		}
		if endpoint := cfg.GetCognitoEndpoint(); endpoint != "" {
			awsConfig.Endpoint = aws.String(endpoint)
		}
		sess, err := awssession.NewSession(awsConfig)
		if err != nil {
			return nil, errors.Wrap(err, "[cognito.New] aws session")
		}
		c.idp = cip.New(sess)
	}

	if c.keySet == nil {
		ctx := oidc.ClientContext(context.Background(), c.httpClient)
		c.keySet = oidc.NewRemoteKeySet(ctx, c.issuer+"/.well-known/jwks.json")
	}

	return c, nil
}

// Login authenticates username and password with USER_SRP_AUTH.
func (c *Client) Login(ctx context.Context, username, password string) (*sessions.Session, error) {
	s, err := newSRP(c.poolID, c.random)
	if err != nil {
		return nil, errors.Wrap(err, "[Login] srp")
	}

	initiated, err := c.idp.InitiateAuthWithContext(ctx, &cip.InitiateAuthInput{
		AuthFlow: aws.String(cip.AuthFlowTypeUserSrpAuth),
		ClientId: aws.String(c.clientID),
		AuthParameters: aws.StringMap(map[string]string{
			"USERNAME":    username,
			"SRP_A":       s.SRPA(),
			"SECRET_HASH": secretHash(username, c.clientID, c.clientSecret),
		}),
	})
	if err != nil {
		return nil, c.authError(err, "[Login] InitiateAuth")
	}

	challenge := aws.StringValue(initiated.ChallengeName)
	if challenge != cip.ChallengeNameTypePasswordVerifier {
		return nil, apperrors.Wrapf(apperrors.ErrAuthenticationFailed, "[Login] unsupported challenge %q", challenge)
	}

	params := aws.StringValueMap(initiated.ChallengeParameters)
	userID := params["USER_ID_FOR_SRP"]
	key, err := s.passwordAuthenticationKey(userID, password, params["SRP_B"], params["SALT"])
	if err != nil {
		return nil, errors.Wrap(err, "[Login] password authentication key")
	}

	timestamp := cognitoTimestamp(c.nowTime())
	signature, err := s.passwordClaim(key, userID, params["SECRET_BLOCK"], timestamp)
	if err != nil {
		return nil, errors.Wrap(err, "[Login] password claim")
	}

	responded, err := c.idp.RespondToAuthChallengeWithContext(ctx, &cip.RespondToAuthChallengeInput{
		ChallengeName: aws.String(cip.ChallengeNameTypePasswordVerifier),
		ClientId:      aws.String(c.clientID),
		Session:       initiated.Session,
		ChallengeResponses: aws.StringMap(map[string]string{
			"TIMESTAMP":                   timestamp,
			"USERNAME":                    userID,
			"PASSWORD_CLAIM_SECRET_BLOCK": params["SECRET_BLOCK"],
			"PASSWORD_CLAIM_SIGNATURE":    signature,
			"SECRET_HASH":                 secretHash(userID, c.clientID, c.clientSecret),
		}),
	})
	if err != nil {
		return nil, c.authError(err, "[Login] RespondToAuthChallenge")
	}
	if responded.AuthenticationResult == nil {
		return nil, apperrors.Wrapf(apperrors.ErrAuthenticationFailed, "[Login] unexpected challenge %q", aws.StringValue(responded.ChallengeName))
	}

	result := responded.AuthenticationResult
	session := &sessions.Session{
		UserID:       userID,
		AccessToken:  aws.StringValue(result.AccessToken),
		RefreshToken: aws.StringValue(result.RefreshToken),
		IDToken:      aws.StringValue(result.IdToken),
	}
	if !session.Complete() {
		return nil, errors.New("[Login] incomplete authentication result")
	}

	c.logIdentity(ctx, session)
	return session, nil
}

// Refresh exchanges refreshToken for a new access token. Cognito does not
// rotate refresh tokens, so the one passed in is kept unless a new one is returned.
func (c *Client) Refresh(ctx context.Context, userID, refreshToken string) (*sessions.Session, error) {
	out, err := c.idp.InitiateAuthWithContext(ctx, &cip.InitiateAuthInput{
		AuthFlow: aws.String(cip.AuthFlowTypeRefreshTokenAuth),
		ClientId: aws.String(c.clientID),
		AuthParameters: aws.StringMap(map[string]string{
			"REFRESH_TOKEN": refreshToken,
			"SECRET_HASH":   secretHash(userID, c.clientID, c.clientSecret),
		}),
	})
	if err != nil {
		return nil, c.authError(err, "[Refresh] InitiateAuth")
	}
	if out.AuthenticationResult == nil {
		return nil, apperrors.Wrapf(apperrors.ErrAuthenticationFailed, "[Refresh] unexpected challenge %q", aws.StringValue(out.ChallengeName))
	}

	result := out.AuthenticationResult
	session := &sessions.Session{
		UserID:       userID,
		AccessToken:  aws.StringValue(result.AccessToken),
		RefreshToken: refreshToken,
		IDToken:      aws.StringValue(result.IdToken),
	}
	if rotated := aws.StringValue(result.RefreshToken); rotated != "" {
		session.RefreshToken = rotated
	}
	if !session.Complete() {
		return nil, errors.New("[Refresh] incomplete authentication result")
	}
	return session, nil
}

// IDClaims are the ID token claims of interest.
type IDClaims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
}

// VerifyIDToken checks the signature, issuer, audience and expiry of raw.
func (c *Client) VerifyIDToken(ctx context.Context, raw string) (*IDClaims, error) {
	verifier := oidc.NewVerifier(c.issuer, c.keySet, &oidc.Config{
		ClientID: c.clientID,
		Now:      c.nowTime,
	})
	token, err := verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}

	var claims IDClaims
	if err := token.Claims(&claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (c *Client) logIdentity(ctx context.Context, session *sessions.Session) {
	if session.IDToken == "" {
		return
	}
	claims, err := c.VerifyIDToken(ctx, session.IDToken)
	if err != nil {
		log.Warn().Err(err).Str("user_id", session.UserID).Msg("ID token did not verify")
		return
	}
	log.Debug().Str("user_id", session.UserID).Str("email", claims.Email).Msg("authenticated")
}

func (c *Client) authError(err error, msg string) error {
	var awsErr awserr.Error
	if errors.As(err, &awsErr) {
		switch awsErr.Code() {
		case cip.ErrCodeNotAuthorizedException,
			cip.ErrCodeUserNotFoundException,
			cip.ErrCodePasswordResetRequiredException,
			cip.ErrCodeUserNotConfirmedException:
			return apperrors.Wrapf(apperrors.ErrAuthenticationFailed, "%s: %s", msg, awsErr.Message())
		}
	}
	return errors.Wrap(err, msg)
}
