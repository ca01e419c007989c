package render

import (
	"image"
	"image/color"

	"github.com/skip2/go-qrcode"
)

const defaultQRCodeSizePx = 256

// GenerateQRCodeImage returns a QR code for payload painted with fg on bg.
// If payload is empty, it returns (nil, nil).
func GenerateQRCodeImage(payload string, sizePx int, fg, bg color.Color) (image.Image, error) {
	if payload == "" {
		return nil, nil
	}
	if sizePx <= 0 {
		sizePx = defaultQRCodeSizePx
	}

	qrCode, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	qrCode.DisableBorder = true
	if fg != nil {
		qrCode.ForegroundColor = fg
	}
	if bg != nil {
		qrCode.BackgroundColor = bg
	}
	return qrCode.Image(sizePx), nil
}
