package mpesa

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/cakeshop-checkout/internal/domain/errors"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
)

// ResultCodeMissing stands in for a callback that carries no ResultCode.
const ResultCodeMissing = -1

type callbackEnvelope struct {
	Body struct {
		STKCallback *stkCallback `json:"stkCallback"`
	} `json:"Body"`
}

type stkCallback struct {
	MerchantRequestID string      `json:"MerchantRequestID"`
	CheckoutRequestID string      `json:"CheckoutRequestID"`
	ResultCode        *resultCode `json:"ResultCode"`
	ResultDesc        string      `json:"ResultDesc"`
	CallbackMetadata  *struct {
		Item []metadataItem `json:"Item"`
	} `json:"CallbackMetadata"`
}

type metadataItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value"`
}

// resultCode accepts both numeric and string encodings.
type resultCode int

func (c *resultCode) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("result code %s: %w", data, err)
	}
	*c = resultCode(n)
	return nil
}

// DecodeCallback parses an STK callback body.
func (c *HTTPClient) DecodeCallback(raw []byte) (*model.PaymentCallback, error) {
	return DecodeCallback(raw)
}

// DecodeCallback parses an STK callback body. Only payloads that are not a single
// valid JSON envelope fail; missing fields decode to zero values.
func DecodeCallback(raw []byte) (*model.PaymentCallback, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var envelope callbackEnvelope
	if err := dec.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrMalformedPayload, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after callback body", domainErrors.ErrMalformedPayload)
	}

	result := &model.PaymentCallback{ResultCode: ResultCodeMissing}
	cb := envelope.Body.STKCallback
	if cb == nil {
		return result, nil
	}

	result.CheckoutRequestID = cb.CheckoutRequestID
	result.MerchantRequestID = cb.MerchantRequestID
	result.ResultDescription = cb.ResultDesc
	if cb.ResultCode != nil {
		result.ResultCode = int(*cb.ResultCode)
	}

	if cb.CallbackMetadata == nil {
		return result, nil
	}
	for _, item := range cb.CallbackMetadata.Item {
		switch item.Name {
		case "MpesaReceiptNumber":
			result.ReceiptNumber = metadataString(item.Value)
		case "PhoneNumber":
			result.PhoneNumber = metadataString(item.Value)
		case "Amount":
			if amount, err := decimal.NewFromString(metadataString(item.Value)); err == nil {
				result.Amount = &amount
			}
		}
	}

	return result, nil
}

func metadataString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		return value.String()
	default:
		return fmt.Sprint(value)
	}
}
