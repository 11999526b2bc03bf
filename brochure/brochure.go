// Package brochure renders a printable one-page PDF for a tour, with a QR
// code linking back to its page on the site.
package brochure

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"tourdesk/models"
)

const qrSize = 256

// Render builds the PDF. link is encoded into the QR code; an empty link
// leaves the code out.
func Render(t models.Tour, link string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(t.Title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.MultiCell(140, 10, tr(t.Title), "", "L", false)

	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(90, 90, 90)
	pdf.Cell(0, 7, tr(strings.Join(nonEmpty(t.Location, t.Country), ", ")))
	pdf.Ln(7)
	facts := nonEmpty(t.Duration, t.GroupSize)
	if t.Price > 0 {
		facts = append(facts, fmt.Sprintf("From %.0f", t.Price))
	}
	if t.Rating > 0 {
		facts = append(facts, fmt.Sprintf("Rated %.1f", t.Rating))
	}
	pdf.Cell(0, 7, tr(strings.Join(facts, "  |  ")))
	pdf.Ln(10)
	pdf.SetTextColor(0, 0, 0)

	if link != "" {
		png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
		if err != nil {
			return nil, fmt.Errorf("qr code: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
		pdf.ImageOptions("qr", 160, 10, 35, 35, false, opts, 0, link)
	}

	if t.Description != "" {
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 6, tr(t.Description), "", "L", false)
		pdf.Ln(4)
	}

	list(pdf, tr, "Highlights", t.Highlights)

	if len(t.Itinerary) > 0 {
		heading(pdf, tr, "Itinerary")
		for _, d := range t.Itinerary {
			pdf.SetFont("Arial", "B", 11)
			pdf.Cell(0, 6, tr(fmt.Sprintf("Day %d: %s", d.Day, d.Title)))
			pdf.Ln(6)
			if d.Description != "" {
				pdf.SetFont("Arial", "", 10)
				pdf.MultiCell(0, 5, tr(d.Description), "", "L", false)
			}
			pdf.Ln(2)
		}
	}

	list(pdf, tr, "Included", t.Included)
	list(pdf, tr, "Not included", t.NotIncluded)

	if link != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 9)
		pdf.SetTextColor(90, 90, 90)
		pdf.Cell(0, 5, tr(link))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func heading(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, tr(title))
	pdf.Ln(8)
}

func list(pdf *gofpdf.Fpdf, tr func(string) string, title string, items []string) {
	if len(items) == 0 {
		return
	}
	heading(pdf, tr, title)
	pdf.SetFont("Arial", "", 10)
	for _, it := range items {
		pdf.MultiCell(0, 5, tr("- "+it), "", "L", false)
	}
	pdf.Ln(3)
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Filename is the download name for t.
func Filename(t models.Tour) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, t.Title)
	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if slug == "" {
		slug = "tour"
	}
	return slug + ".pdf"
}
