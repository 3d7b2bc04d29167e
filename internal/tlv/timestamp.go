package tlv

// Timestamp is the KeePass 1.x packed date/time: year is full (e.g. 2026),
// month and day are 1-based, hour/minute/second are 0-based. The zero value
// is an unset timestamp; "never expires" is the NeverExpires sentinel below.
type Timestamp struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// NeverExpires is the sentinel value the format uses for fields that never
// expire: 2999-12-28 23:59:59.
var NeverExpires = Timestamp{Year: 2999, Month: 12, Day: 28, Hour: 23, Minute: 59, Second: 59}

// Pack encodes t into the 5-byte bit-packed representation spec.md §4.3
// defines: a 40-bit big-endian value made of year(14) month(4) day(5)
// hour(5) minute(6) second(6), split MSB-first into 5 bytes.
func Pack(t Timestamp) [5]byte {
	v := uint64(t.Year)<<26 |
		uint64(t.Month)<<22 |
		uint64(t.Day)<<17 |
		uint64(t.Hour)<<12 |
		uint64(t.Minute)<<6 |
		uint64(t.Second)

	var b [5]byte
	b[0] = byte(v >> 32)
	b[1] = byte(v >> 24)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 8)
	b[4] = byte(v)
	return b
}

// Unpack decodes a 5-byte packed timestamp field back into its components.
func Unpack(b [5]byte) Timestamp {
	v := uint64(b[0])<<32 | uint64(b[1])<<24 | uint64(b[2])<<16 | uint64(b[3])<<8 | uint64(b[4])

	return Timestamp{
		Year:   int(v >> 26),
		Month:  int((v >> 22) & 0xF),
		Day:    int((v >> 17) & 0x1F),
		Hour:   int((v >> 12) & 0x1F),
		Minute: int((v >> 6) & 0x3F),
		Second: int(v & 0x3F),
	}
}
