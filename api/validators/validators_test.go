package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront-orders/pkg/errors"
	"github.com/stretchr/testify/require"
)

type itemBody struct {
	Quantity int `json:"quantity" validate:"gte=1"`
}

type orderBody struct {
	PaymentType int        `json:"payment_type" validate:"required,oneof=1 2 3"`
	Items       []itemBody `json:"order_items" validate:"required,min=1,dive"`
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"payment_type":1,"order_items":[{"quantity":1}],"extra":true}`))
	var body orderBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestDecodeJSONBodyEmptyBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(""))
	var body orderBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	require.Equal(t, "request body required", pkgerrors.As(err).Message())
}

func TestDecodeJSONBodyReportsFieldPaths(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"payment_type":9,"order_items":[{"quantity":0}]}`))
	var body orderBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	require.Equal(t, "must be greater than or equal to 1", details["order_items[0].quantity"])
	require.Equal(t, "must be one of [1 2 3]", details["payment_type"])
}

func TestDecodeJSONBodyEmptyItems(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"payment_type":1,"order_items":[]}`))
	var body orderBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	require.Equal(t, "order_items must contain at least 1 item(s)", pkgerrors.As(err).Message())
}

func TestDecodeJSONBodyRejectsTrailingData(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"payment_type":1,"order_items":[{"quantity":1}]} {"again":1}`))
	var body orderBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	require.Equal(t, "request body must contain a single JSON object", pkgerrors.As(err).Message())
}

func TestDecodeJSONBodyDescribesDecodeFailures(t *testing.T) {
	cases := map[string]string{
		`{"payment_type":"cash"}`:     "payment_type must be int",
		`{"payment_type":1,`:          "request body is truncated",
		`{"payment_type":}`:           "malformed JSON at offset 17",
		`{"payment_type":1,"x":true}`: `unknown field "x"`,
	}
	for raw, want := range cases {
		req := httptest.NewRequest("POST", "/", strings.NewReader(raw))
		var body orderBody
		err := DecodeJSONBody(req, &body)
		require.Error(t, err, raw)
		require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err), raw)
		require.Equal(t, want, pkgerrors.As(err).Message(), raw)
	}
}

func TestDecodeJSONBodyEnforcesSizeLimit(t *testing.T) {
	huge := `{"payment_type":1,"order_items":[` + strings.Repeat(`{"quantity":1},`, int(MaxBodyBytes/15)+1) + `{"quantity":1}]}`
	req := httptest.NewRequest("POST", "/", strings.NewReader(huge))
	var body orderBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	require.Contains(t, pkgerrors.As(err).Message(), "exceeds")
}

func TestQueryParams(t *testing.T) {
	req := httptest.NewRequest("GET", "/?page=3&limit=abc&status=9&sort_by=total&sort_by=name&sortBy=order_date", nil)
	q := Query(req)

	page, err := q.Int("page", 1, 1, 1000)
	require.NoError(t, err)
	require.Equal(t, 3, page)

	_, err = q.Int("limit", 10, 1, 100)
	require.Error(t, err)
	require.Equal(t, map[string]any{"field": "limit"}, pkgerrors.As(err).Details())

	_, err = q.OptionalInt("status", 1, 6)
	require.Error(t, err)

	missing, err := q.OptionalInt("payment_type", 1, 3)
	require.NoError(t, err)
	require.Nil(t, missing)

	_, err = q.OptionalInt("sort_by", 0, 1)
	require.Error(t, err)
	require.Equal(t, "order_date", q.First(32, "sort_by", "sortBy"))
}

func TestSanitizeString(t *testing.T) {
	require.Equal(t, "abc", SanitizeString("  abcdef ", 3))
	require.Equal(t, "abc", SanitizeString(" abc ", 0))
}

func TestSanitizeStringFoldsWhitespaceAndCapsRunes(t *testing.T) {
	require.Equal(t, "Nguyen Van A", SanitizeString("  Nguyen \t Van  A ", 0))
	require.Equal(t, "Ngu", SanitizeString("Nguyễn", 3))
	require.Equal(t, "Ngô", SanitizeString("Ngô Bảo", 4))
	require.Equal(t, "", SanitizeString("   ", 10))
}
