package rule

import (
	"math"
	"strings"
	"testing"

	"github.com/asolidum/proofreader/internal/schema"
)

func TestRules_Total(t *testing.T) {
	t.Parallel()

	for ft := schema.FieldType(0); ft < schema.NumTypes; ft++ {
		if rules[ft] == nil {
			t.Fatalf("no rule for %v", ft)
		}
	}
	if Check(schema.NumTypes, "x") {
		t.Fatalf("Check on out-of-range type must be false")
	}
}

func TestCheck_Table(t *testing.T) {
	t.Parallel()

	const (
		goodUUID = "123e4567-e89b-12d3-a456-426614174000"
		hex32    = "0123456789abcdef0123456789ABCDEF"
	)
	hex64 := hex32 + hex32

	cases := []struct {
		name  string
		ft    schema.FieldType
		value string
		want  bool
	}{
		{"uuid_ok", schema.UUID, goodUUID, true},
		{"uuid_upper", schema.UUID, strings.ToUpper(goodUUID), true},
		{"uuid_embedded", schema.UUID, "x" + goodUUID + "x", true},
		{"uuid_short_group", schema.UUID, "123e4567-e89b-12d3-a456-42661417400", false},
		{"uuid_bad", schema.UUID, "bad-uuid", false},
		{"uuid_empty", schema.UUID, "", false},

		{"app_id_ok", schema.AppID, hex64, true},
		{"app_id_short", schema.AppID, hex64[:63], false},
		{"user_id_ok", schema.UserID, hex32, true},
		{"user_id_short", schema.UserID, hex32[:31], false},
		{"user_id_non_hex", schema.UserID, strings.Repeat("g", 32), false},

		{"os_ios", schema.OS, "IOS", true},
		{"os_and", schema.OS, "AND", true},
		{"os_embedded", schema.OS, "xIOSx", false},
		{"os_lower", schema.OS, "ios", false},

		{"version_semver", schema.Version, "1.2.3", true},
		{"version_star", schema.Version, "1.2.*", true},
		{"version_digits", schema.Version, "7", true},
		{"version_none", schema.Version, "abc", false},

		{"ad_id_idfa", schema.AdIDType, "IDFA", true},
		{"ad_id_aaid", schema.AdIDType, "AAID", true},
		{"ad_id_other", schema.AdIDType, "GAID", false},

		{"am_type_ok", schema.AmType, "ab", true},
		{"am_type_upper", schema.AmType, "AB", false},
		{"am_type_one", schema.AmType, "a", false},

		{"ip_ok", schema.IPAddr, "10.0.0.1", true},
		{"ip_no_range_check", schema.IPAddr, "999.999.999.999", true},
		{"ip_three_groups", schema.IPAddr, "10.0.1", false},

		{"ts_sec_ok", schema.TSSec, "1700000000", true},
		{"ts_sec_partial", schema.TSSec, "1234567890abc", true},
		{"ts_sec_short", schema.TSSec, "170000000", false},
		{"ts_msec_ok", schema.TSMsec, "1700000000000", true},
		{"ts_msec_short", schema.TSMsec, "1700000000", false},

		{"cc_ok", schema.CC, "US", true},
		{"cc_lower", schema.CC, "us", false},
		{"state_ok", schema.State, "CA", true},
		{"state_lower", schema.State, "ca", false},

		{"zip_ok", schema.Zip, "94107", true},
		{"zip_short", schema.Zip, "9410", false},

		{"loc_context_bg", schema.LocContext, "background", true},
		{"loc_context_fg", schema.LocContext, "foreground", true},
		{"loc_context_other", schema.LocContext, "Foreground", false},
		{"loc_method_bcn", schema.LocMethod, "BCN", true},
		{"loc_method_gps", schema.LocMethod, "GPS", true},
		{"loc_method_wifi", schema.LocMethod, "WIFI", false},

		{"text_any", schema.Text, "", true},
		{"num_any", schema.Num, "not a number", true},
		{"skip_any", schema.Skip, "whatever", true},

		{"int_ok", schema.Int, "42", true},
		{"int_none", schema.Int, "x", false},
		{"float_ok", schema.Float, "-1.5", true},
		{"float_none", schema.Float, "abc", false},

		{"lat_90", schema.Lat, "90", true},
		{"lat_91", schema.Lat, "91", false},
		{"lat_neg", schema.Lat, "-90", true},
		{"lat_abc", schema.Lat, "abc", true},
		{"lat_prefix", schema.Lat, "91abc", false},
		{"lon_180", schema.Lon, "180", true},
		{"lon_200", schema.Lon, "200", false},
		{"lon_neg", schema.Lon, "-180.0", true},

		{"invalid_never", schema.Invalid, "anything", false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Check(tc.ft, tc.value); got != tc.want {
				t.Fatalf("Check(%v, %q)=%v; want %v", tc.ft, tc.value, got, tc.want)
			}
		})
	}
}

func TestRange(t *testing.T) {
	t.Parallel()

	b, ok := Range(schema.Lat)
	if !ok || b.Min != -90 || b.Max != 90 {
		t.Fatalf("Range(lat)=%v,%v", b, ok)
	}
	b, ok = Range(schema.Lon)
	if !ok || b.Min != -180 || b.Max != 180 {
		t.Fatalf("Range(lon)=%v,%v", b, ok)
	}
	if _, ok := Range(schema.UUID); ok {
		t.Fatalf("Range(uuid) ok=true; want false")
	}
}

func TestLeadingFloat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"abc", 0},
		{"12", 12},
		{"  -3.25", -3.25},
		{"+4", 4},
		{"12abc", 12},
		{".5", 0.5},
		{"5.", 5},
		{"-", 0},
		{"-.", 0},
		{"1e2", 100},
		{"1e", 1},
		{"1e+", 1},
		{"2.5E-1x", 0.25},
	}
	for _, tc := range cases {
		if got := LeadingFloat(tc.in); got != tc.want {
			t.Fatalf("LeadingFloat(%q)=%v; want %v", tc.in, got, tc.want)
		}
	}
	if got := LeadingFloat("1e999"); !math.IsInf(got, 1) {
		t.Fatalf("LeadingFloat(1e999)=%v; want +Inf", got)
	}
}
