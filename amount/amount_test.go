package amount

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestXRPDropsRoundTrip(t *testing.T) {
	for _, xrp := range []string{"0", "1", "1.5", "0.000001", "123.456789", "99999999999.999999", "100000000000"} {
		drops, err := XRPToDrops(xrp)
		require.NoError(t, err, xrp)
		require.Regexp(t, `^[0-9]+$`, drops, xrp)

		back, err := DropsToXRP(drops)
		require.NoError(t, err, xrp)
		require.Equal(t, xrp, back)
	}
}

func TestXRPDropsRoundTripCanonicalizes(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want string
	}{
		{"1.50", "1.5"},
		{"2.000000", "2"},
		{"0.100", "0.1"},
	} {
		drops, err := XRPToDrops(tt.in)
		require.NoError(t, err, tt.in)

		back, err := DropsToXRP(drops)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, back)
	}
}

func TestXRPToDrops(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want string
	}{
		{"1", "1000000"},
		{"0.1", "100000"},
		{"1.50", "1500000"},
		{"0.000001", "1"},
	} {
		got, err := XRPToDrops(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "-1", "1.0000001", "abc", "1e6", "100000000000.000001", " 1"} {
		_, err := XRPToDrops(bad)
		require.Error(t, err, bad)
	}
}

func TestDropsToXRP(t *testing.T) {
	got, err := DropsToXRP("1500000")
	require.NoError(t, err)
	require.Equal(t, "1.5", got)

	for _, bad := range []string{"1.5", "-10", "", "100000000000000001"} {
		_, err := DropsToXRP(bad)
		require.Error(t, err, bad)
	}
}

func TestAmountJSON(t *testing.T) {
	var native Amount
	require.NoError(t, json.Unmarshal([]byte(`"1000"`), &native))
	require.True(t, native.IsNative())
	require.Equal(t, "1000", native.Drops)

	var issued Amount
	require.NoError(t, json.Unmarshal([]byte(`{"currency":"USD","issuer":"rIssuer","value":"10.5"}`), &issued))
	require.False(t, issued.IsNative())
	require.Equal(t, "USD", issued.Issued.Currency)

	out, err := json.Marshal(issued)
	require.NoError(t, err)
	require.JSONEq(t, `{"currency":"USD","issuer":"rIssuer","value":"10.5"}`, string(out))

	out, err = json.Marshal(native)
	require.NoError(t, err)
	require.Equal(t, `"1000"`, string(out))
}

func TestAmountValidateAndZero(t *testing.T) {
	require.NoError(t, NewDrops("0").Validate())
	require.True(t, NewDrops("0").IsZero())
	require.Error(t, NewDrops("1.5").Validate())
	require.Error(t, NewDrops("").Validate())

	require.NoError(t, NewIssued("USD", "rIssuer", "0").Validate())
	require.True(t, NewIssued("USD", "rIssuer", "0.000").IsZero())
	require.Error(t, NewIssued("XRP", "rIssuer", "1").Validate())
	require.Error(t, NewIssued("USD", "", "1").Validate())
	require.Error(t, NewIssued("USD", "rIssuer", "-1").Validate())
	require.Error(t, NewIssued("US", "rIssuer", "1").Validate())
	require.NoError(t, NewIssued("0158415500000000C1F76FF6ECB0BAC600000000", "rIssuer", "1").Validate())
}
