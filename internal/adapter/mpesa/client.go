package mpesa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/polkiloo/cakeshop-checkout/internal/config"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
)

const (
	tokenPath       = "/oauth/v1/generate"
	stkPushPath     = "/mpesa/stkpush/v1/processrequest"
	transactionType = "CustomerPayBillOnline"
	acceptedCode    = "0"
	maxBodyLog      = 2048
)

// Client exposes operations against the M-Pesa Daraja API.
type Client interface {
	Authenticate(ctx context.Context) (string, error)
	InitiatePayment(ctx context.Context, req model.PaymentRequest) (*model.InitiationResult, error)
	DecodeCallback(raw []byte) (*model.PaymentCallback, error)
}

// HTTPClient implements Client via the Daraja HTTP API. It keeps no token state.
type HTTPClient struct {
	baseURL     *url.URL
	cfg         config.Mpesa
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *slog.Logger
	now         func() time.Time
	description string
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// stkPushResponse covers both the acknowledgment and the error envelope.
type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
	RequestID           string `json:"requestId"`
	ErrorCode           string `json:"errorCode"`
	ErrorMessage        string `json:"errorMessage"`
}

// NewHTTPClient creates a gateway client from validated settings.
func NewHTTPClient(cfg config.Mpesa, logger *slog.Logger) (*HTTPClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("mpesa config: %w", err)
	}
	base, err := cfg.ResolveBaseURL()
	if err != nil {
		return nil, err
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse mpesa url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("mpesa url must be absolute")
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	description := cfg.Description
	if description == "" {
		description = "Cake Purchase"
	}

	return &HTTPClient{
		baseURL:     parsed,
		cfg:         cfg,
		limiter:     limiter,
		logger:      logger,
		now:         time.Now,
		description: description,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

func (c *HTTPClient) endpoint(p string) url.URL {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, p)
	return endpoint
}

func (c *HTTPClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// Authenticate exchanges the consumer key and secret for a bearer token.
func (c *HTTPClient) Authenticate(ctx context.Context) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", &AuthError{Err: err}
	}

	endpoint := c.endpoint(tokenPath)
	endpoint.RawQuery = url.Values{"grant_type": {"client_credentials"}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &AuthError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("mpesa token request failed",
			slog.Int("status", resp.StatusCode),
			slog.String("body", truncate(body)),
		)
		return "", &AuthError{StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var data tokenResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", &AuthError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode token response: %w", err)}
	}
	if data.AccessToken == "" {
		return "", &AuthError{StatusCode: resp.StatusCode, Err: errors.New("access token missing in response")}
	}

	return data.AccessToken, nil
}

// InitiatePayment sends an STK push prompt. A gateway rejection is returned as an
// unacknowledged result; transport and decoding failures are returned as *GatewayError.
func (c *HTTPClient) InitiatePayment(ctx context.Context, r model.PaymentRequest) (*model.InitiationResult, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.wait(ctx); err != nil {
		return nil, &GatewayError{Op: "stk push", Err: err}
	}

	description := r.Description
	if description == "" {
		description = c.description
	}

	timestamp := Timestamp(c.now())
	phone := NormalizePhone(r.Phone)
	payload := stkPushRequest{
		BusinessShortCode: c.cfg.Shortcode,
		Password:          Password(c.cfg.Shortcode, c.cfg.Passkey, timestamp),
		Timestamp:         timestamp,
		TransactionType:   transactionType,
		Amount:            r.Amount.Ceil().IntPart(),
		PartyA:            phone,
		PartyB:            c.cfg.Shortcode,
		PhoneNumber:       phone,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  "ORDER" + strconv.FormatInt(r.OrderID, 10),
		TransactionDesc:   description,
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, &GatewayError{Op: "stk push", Err: err}
	}

	endpoint := c.endpoint(stkPushPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(encoded))
	if err != nil {
		return nil, &GatewayError{Op: "stk push", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Info("mpesa stk push",
		slog.Int64("order_id", r.OrderID),
		slog.Int64("amount", payload.Amount),
		slog.String("account_reference", payload.AccountReference),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &GatewayError{Op: "stk push", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GatewayError{Op: "stk push", StatusCode: resp.StatusCode, Err: err}
	}

	var data stkPushResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &GatewayError{
			Op:         "stk push",
			StatusCode: resp.StatusCode,
			Body:       truncate(body),
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}

	c.logger.Info("mpesa stk push response",
		slog.Int64("order_id", r.OrderID),
		slog.Int("status", resp.StatusCode),
		slog.String("response_code", data.ResponseCode),
		slog.String("error_code", data.ErrorCode),
		slog.String("checkout_request_id", data.CheckoutRequestID),
	)

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	switch {
	case success && data.ErrorCode == "":
		return &model.InitiationResult{
			Acknowledged:        data.ResponseCode == acceptedCode && data.CheckoutRequestID != "",
			CheckoutRequestID:   data.CheckoutRequestID,
			MerchantRequestID:   data.MerchantRequestID,
			ResponseCode:        data.ResponseCode,
			ResponseDescription: data.ResponseDescription,
		}, nil
	case data.ErrorCode != "":
		return &model.InitiationResult{
			Acknowledged:        false,
			ResponseCode:        data.ErrorCode,
			ResponseDescription: data.ErrorMessage,
		}, nil
	default:
		return nil, &GatewayError{
			Op:         "stk push",
			StatusCode: resp.StatusCode,
			Body:       truncate(body),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
}

func truncate(body []byte) string {
	if len(body) > maxBodyLog {
		return string(body[:maxBodyLog])
	}
	return string(body)
}
