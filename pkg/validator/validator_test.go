package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paypalRequest struct {
	SuccessURL string `json:"success_url" validate:"required,url"`
	FailureURL string `json:"failure_url" validate:"required,url"`
	Mode       string `json:"mode" validate:"omitempty,oneof=adaptive express"`
	Region     string `json:"region" validate:"omitempty,alphanum,min=2,max=8"`
	Quantity   int    `json:"quantity" validate:"gte=0,lte=100"`
}

func TestValidate_Success(t *testing.T) {
	err := Validate(paypalRequest{
		SuccessURL: "https://shop.example.com/ok",
		FailureURL: "https://shop.example.com/ko",
		Mode:       "adaptive",
		Region:     "IT",
		Quantity:   2,
	})
	assert.NoError(t, err)
}

func TestValidate_FieldMessages(t *testing.T) {
	err := Validate(paypalRequest{
		FailureURL: "not a url",
		Mode:       "classic",
		Region:     "IT-NORTH",
		Quantity:   101,
	})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["SuccessURL"])
	assert.Equal(t, "must be a valid URL", fields["FailureURL"])
	assert.Equal(t, "must be one of: adaptive express", fields["Mode"])
	assert.Equal(t, "must contain only letters and digits", fields["Region"])
	assert.Equal(t, "must be less than or equal to 100", fields["Quantity"])
	assert.Contains(t, err.Error(), "field 'SuccessURL' is required")
}

func TestDecodeAndValidate(t *testing.T) {
	body := `{"success_url":"https://a.example/ok","failure_url":"https://a.example/ko"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var dst paypalRequest
	require.NoError(t, DecodeAndValidate(req, &dst))
	assert.Equal(t, "https://a.example/ok", dst.SuccessURL)
}

func TestDecodeAndValidate_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{bad`))

	var dst paypalRequest
	err := DecodeAndValidate(req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_EmptyBodyStillValidated(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)

	var dst paypalRequest
	err := DecodeAndValidate(req, &dst)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
}
