package rpc

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
)

type line struct {
	Name        string `json:"name"`
	Outstanding Number `json:"outstanding_amount"`
}

type sampleArgs struct {
	Email   string                   `json:"email"`
	Amount  Number                   `json:"amount"`
	Active  Flag                     `json:"active"`
	On      Date                     `json:"date"`
	Lines   Embedded[[]line]         `json:"lines"`
	Payment Embedded[map[string]any] `json:"payment"`
	Needed  string                   `json:"needed" validate:"required"`
}

func TestDecodeArgsFromQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?email=a@b.c&amount=1,250.50&active=1&date=2026-03-04", nil)

	var args sampleArgs
	require.NoError(t, DecodeArgs(req, &args))
	assert.Equal(t, "a@b.c", args.Email)
	assert.Equal(t, "1250.5", args.Amount.String())
	assert.True(t, bool(args.Active))
	assert.Equal(t, "2026-03-04", args.On.Format("2006-01-02"))
}

func TestDecodeArgsJSONBodyWinsOverQuery(t *testing.T) {
	body := `{"email":"body@x.io","amount":12.5,"active":true,"lines":"[{\"name\":\"SINV-1\",\"outstanding_amount\":\"100\"}]"}`
	req := httptest.NewRequest(http.MethodPost, "/x?email=query@x.io", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	var args sampleArgs
	require.NoError(t, DecodeArgs(req, &args))
	assert.Equal(t, "body@x.io", args.Email)
	assert.Equal(t, 12.5, args.Amount.Float64())
	require.True(t, args.Lines.Set)
	require.Len(t, args.Lines.Value, 1)
	assert.Equal(t, "SINV-1", args.Lines.Value[0].Name)
	assert.Equal(t, 100.0, args.Lines.Value[0].Outstanding.Float64())
}

func TestDecodeArgsEmbeddedAcceptsRawJSON(t *testing.T) {
	body := `{"payment":{"name":"AP-1","bank_account":"Bank - TK"}}`
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	var args sampleArgs
	require.NoError(t, DecodeArgs(req, &args))
	assert.True(t, args.Payment.Set)
	assert.Equal(t, "AP-1", args.Payment.Value["name"])
}

func TestDecodeArgsForm(t *testing.T) {
	form := url.Values{"email": {"f@x.io"}, "active": {"0"}, "cmd": {"tk2.api.search_customer"}}
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var args sampleArgs
	require.NoError(t, DecodeArgs(req, &args))
	assert.Equal(t, "f@x.io", args.Email)
	assert.False(t, bool(args.Active))
}

func TestNumberTreatsEmptyAsZero(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?amount=", nil)
	var args sampleArgs
	require.NoError(t, DecodeArgs(req, &args))
	assert.True(t, args.Amount.IsZero())
}

func TestDecodeArgsRejectsBadNumber(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?amount=abc", nil)
	var args sampleArgs
	err := DecodeArgs(req, &args)
	require.Error(t, err)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestBindReportsMissingFieldsByJSONName(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?email=a@b.c", nil)
	var args sampleArgs
	err := Bind(req, &args)
	require.Error(t, err)
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Contains(t, err.Error(), "needed")
}

func TestFlagValues(t *testing.T) {
	cases := map[string]bool{
		`true`: true, `1`: true, `1.0`: true, `1e0`: true, `"1"`: true,
		`"true"`: false, `"True"`: false, `"1.0"`: false, `" 1"`: false,
		`false`: false, `0`: false, `2`: false, `"0"`: false, `"yes"`: false, `null`: false,
	}
	for raw, want := range cases {
		var f Flag
		require.NoError(t, f.UnmarshalJSON([]byte(raw)))
		assert.Equal(t, want, bool(f), raw)
	}
}

func TestFlagFromFormAndQuery(t *testing.T) {
	form := url.Values{"active": {"true"}}
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	var args sampleArgs
	require.NoError(t, DecodeArgs(req, &args))
	assert.False(t, bool(args.Active), "only \"1\" is truthy as a string")

	req = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"active":1.0}`))
	req.Header.Set("Content-Type", "application/json")
	args = sampleArgs{}
	require.NoError(t, DecodeArgs(req, &args))
	assert.True(t, bool(args.Active))
}
