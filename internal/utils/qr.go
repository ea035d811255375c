package utils

import (
	"errors"
	"net/url"

	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

// UPIPaymentURI construit le lien de paiement UPI (upi://pay) d'une commande.
func UPIPaymentURI(vpa, payeeName string, amount decimal.Decimal, note string) (string, error) {
	if vpa == "" {
		return "", errors.New("utils: VPA UPI manquant")
	}
	q := url.Values{}
	q.Set("pa", vpa)
	if payeeName != "" {
		q.Set("pn", payeeName)
	}
	q.Set("am", amount.StringFixed(2))
	q.Set("cu", "INR")
	if note != "" {
		q.Set("tn", note)
	}
	return "upi://pay?" + q.Encode(), nil
}

// UPIPaymentQR retourne le QR code PNG du lien de paiement.
func UPIPaymentQR(vpa, payeeName string, amount decimal.Decimal, note string, size int) ([]byte, error) {
	uri, err := UPIPaymentURI(vpa, payeeName, amount, note)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(uri, qrcode.Medium, size)
}
