package mpesa

import (
	"encoding/base64"
	"time"
)

const timestampLayout = "20060102150405"

// eat is East Africa Time, the zone the gateway validates timestamps against.
var eat = time.FixedZone("EAT", 3*60*60)

// Timestamp formats t the way STK push requests expect.
func Timestamp(t time.Time) string {
	return t.In(eat).Format(timestampLayout)
}

// Password builds the STK push password for the given timestamp.
func Password(shortcode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))
}
