package prescription

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"

	"medical-intake-assistant/internal/i18n"
	"medical-intake-assistant/internal/intake"
	"medical-intake-assistant/internal/media"
)

const dateLayout = "02 Jan 2006, 15:04"

// ShareText renders the prescription with *bold* and _italic_ markers, the
// format messaging apps understand. Field order is fixed.
func ShareText(p Prescription, patient *intake.Profile, lang string) string {
	t := func(key i18n.Key) string { return i18n.T(lang, key, nil) }

	var b strings.Builder
	fmt.Fprintf(&b, "*%s - %s*\n\n", t(i18n.KeyAppName), t(i18n.KeyPrescriptionTitle))
	if patient != nil {
		fmt.Fprintf(&b, "*%s:* %s\n", t(i18n.KeyPatientName), patient.Name)
		fmt.Fprintf(&b, "*%s:* %s\n", t(i18n.KeyPatientAge), patient.Age)
		fmt.Fprintf(&b, "*%s:* %s\n\n", t(i18n.KeyPatientPhone), patient.Phone)
	}
	fmt.Fprintf(&b, "*%s:* %s\n\n", t(i18n.KeyDate), p.CreatedAt.Format(dateLayout))
	fmt.Fprintf(&b, "*%s:*\n%s\n\n", t(i18n.KeyDiagnosisTitle), p.Diagnosis)
	fmt.Fprintf(&b, "*%s:*\n", t(i18n.KeyMedicinesTitle))
	for _, m := range p.Medicines {
		fmt.Fprintf(&b, "- %s (%s)\n", m.Name, m.Dosage)
	}
	fmt.Fprintf(&b, "\n*%s:*\n%s\n\n", t(i18n.KeyInstructionsTitle), p.Instructions)
	fmt.Fprintf(&b, "_%s_", t(i18n.KeyDisclaimer))
	return b.String()
}

// PlainText is ShareText without the emphasis markers.
func PlainText(p Prescription, patient *intake.Profile, lang string) string {
	return strings.NewReplacer("*", "", "_", "").Replace(ShareText(p, patient, lang))
}

// NormalizePhone keeps only the digits of phone.
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}

func patientPhone(patient *intake.Profile) string {
	if patient == nil {
		return ""
	}
	return NormalizePhone(patient.Phone)
}

// WhatsAppLink prefills the share text; the recipient segment is omitted when
// no phone number is known.
func WhatsAppLink(p Prescription, patient *intake.Profile, lang string) string {
	text := media.EscapeComponent(ShareText(p, patient, lang))
	if phone := patientPhone(patient); phone != "" {
		return "https://wa.me/" + phone + "?text=" + text
	}
	return "https://wa.me/?text=" + text
}

// SMSLink prefills the plain text body.
func SMSLink(p Prescription, patient *intake.Profile, lang string) string {
	body := media.EscapeComponent(PlainText(p, patient, lang))
	if phone := patientPhone(patient); phone != "" {
		return "sms:" + phone + "?&body=" + body
	}
	return "sms:?&body=" + body
}

// QRCode renders link as a PNG so it can be scanned from another screen.
func QRCode(link string, size int) ([]byte, error) {
	png, err := qrcode.Encode(link, qrcode.Low, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
