package totpx

import (
	"encoding/base64"
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QRSize is the default edge length in pixels of enrollment QR codes.
const QRSize = 256

var ErrEmptyURI = errors.New("totpx: empty provisioning uri")

// QRCodeDataURL renders uri as a PNG QR code and returns it as a data URL
// that can be dropped straight into an <img src>.
func QRCodeDataURL(uri string, size int) (string, error) {
	if uri == "" {
		return "", ErrEmptyURI
	}
	if size <= 0 {
		size = QRSize
	}
	png, err := qrcode.Encode(uri, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("totpx: encode qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
