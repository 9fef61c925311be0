package share

import (
	qrcode "github.com/skip2/go-qrcode"
)

// DefaultQRSize is the pixel size of a rendered share QR code.
const DefaultQRSize = 256

// RenderQRCode renders a share URL as a PNG QR code. The URL is rendered
// verbatim; callers should check IsShareURLTooLong first, dense QR codes
// scan poorly.
func RenderQRCode(shareURL string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	return qrcode.Encode(shareURL, qrcode.Medium, size)
}
