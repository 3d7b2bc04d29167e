package tlv

import "testing"

func TestTimestampRoundTrip(t *testing.T) {
	cases := []Timestamp{
		{Year: 0, Month: 1, Day: 1, Hour: 0, Minute: 0, Second: 0},
		{Year: 2026, Month: 8, Day: 2, Hour: 12, Minute: 34, Second: 56},
		{Year: 16383, Month: 12, Day: 31, Hour: 23, Minute: 59, Second: 59},
		NeverExpires,
	}
	for _, want := range cases {
		got := Unpack(Pack(want))
		if got != want {
			t.Fatalf("round trip mismatch: want %+v, got %+v", want, got)
		}
	}
}

func TestTimestampRoundTripFullDomain(t *testing.T) {
	for _, y := range []int{0, 1, 2025, 16383} {
		for mo := 1; mo <= 12; mo++ {
			for _, d := range []int{1, 15, 31} {
				for _, h := range []int{0, 12, 23} {
					for _, mi := range []int{0, 30, 59} {
						for _, s := range []int{0, 30, 59} {
							want := Timestamp{Year: y, Month: mo, Day: d, Hour: h, Minute: mi, Second: s}
							if got := Unpack(Pack(want)); got != want {
								t.Fatalf("round trip mismatch: want %+v, got %+v", want, got)
							}
						}
					}
				}
			}
		}
	}
}

func TestPackKnownLayout(t *testing.T) {
	// 2000-01-01 00:00:00: year=2000 in the high 14 bits, month=1 at bit
	// 22, day=1 at bit 17, and the time-of-day bits all zero.
	ts := Timestamp{Year: 2000, Month: 1, Day: 1}
	b := Pack(ts)
	v := uint64(b[0])<<32 | uint64(b[1])<<24 | uint64(b[2])<<16 | uint64(b[3])<<8 | uint64(b[4])
	want := uint64(2000)<<26 | uint64(1)<<22 | uint64(1)<<17
	if v != want {
		t.Fatalf("packed value = %#x, want %#x", v, want)
	}
}
