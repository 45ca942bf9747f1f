package lib

import (
	"encoding/base64"
	"fmt"
	"os"
	"path"

	"github.com/google/uuid"
	"github.com/yeqown/go-qrcode"
)

// QRCodeDataURI renders text as a JPEG QR code and returns it as a data URI.
func QRCodeDataURI(text string) (string, error) {
	qrc, err := qrcode.New(text, qrcode.WithBuiltinImageEncoder(qrcode.JPEG_FORMAT))
	if err != nil {
		return "", err
	}
	filepath := path.Join(os.TempDir(), fmt.Sprintf("qr-%s.jpeg", uuid.NewString()))
	if err := qrc.Save(filepath); err != nil {
		return "", err
	}
	defer os.Remove(filepath)
	b, err := os.ReadFile(filepath)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(b), nil
}
